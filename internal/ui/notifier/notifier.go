// Package notifier fans out change pings to the open SSE streams.
package notifier

import "sync"

// Subscription is one listener. C receives a ping after each change; pings
// coalesce while the listener is busy.
type Subscription struct {
	C <-chan struct{}

	ch chan struct{}
	n  *Notifier
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.n.remove(s)
}

// Notifier broadcasts "something changed" to every subscription. Listeners
// re-read the store themselves.
type Notifier struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a listener. Callers must Close it when done.
func (n *Notifier) Subscribe() *Subscription {
	ch := make(chan struct{}, 1)
	sub := &Subscription{C: ch, ch: ch, n: n}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[sub]; !ok {
		return
	}
	delete(n.subs, sub)
	close(sub.ch)
}

// Broadcast pings every listener without blocking. A listener that already
// has a ping pending is skipped.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.subs {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of open subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
