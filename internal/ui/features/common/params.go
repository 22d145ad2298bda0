package common

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// PathID parses the integer URL parameter key.
func PathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", core.ErrInvalidInput, key)
	}
	return id, nil
}

// Pagination reads skip and limit from the query. Missing values take the
// defaults; limit is clamped by the store.
func Pagination(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		skip, err = strconv.Atoi(v)
		if err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("%w: skip must be a non-negative integer", core.ErrInvalidInput)
		}
	}

	limit = core.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: limit must be an integer", core.ErrInvalidInput)
		}
	}
	return skip, core.ClampLimit(limit), nil
}
