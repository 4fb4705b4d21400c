// Package main provides the wilk command-line interface.
package main

import (
	"os"

	"github.com/statforge/wilk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
