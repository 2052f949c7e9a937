// Package main provides the CLI for headfix.
package main

import (
	"os"

	"github.com/leapstack-labs/headfix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
