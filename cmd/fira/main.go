// Package main provides the entry point for the fira CLI.
package main

import (
	"os"

	"github.com/olehkavur/fira/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
