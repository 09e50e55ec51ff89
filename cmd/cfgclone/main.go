// Package main is the entry point for the cfgclone CLI tool.
package main

import (
	"os"

	"github.com/akoval/cfgclone/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
