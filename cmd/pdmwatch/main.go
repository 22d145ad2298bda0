// Package main provides the pdmwatch CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/pdmwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
