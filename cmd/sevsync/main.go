// Package main is the entry point for the sevsync CLI.
package main

import (
	"os"

	"github.com/sevsync-dev/sevsync/cmd/sevsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
