// Package main provides the entry point for the lantern CLI.
package main

import (
	"os"

	"github.com/keystroke-labs/lantern/cmd/lantern/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
