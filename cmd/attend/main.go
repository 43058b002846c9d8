// Package main is the entry point for the attend CLI.
package main

import (
	"os"

	"github.com/attend-io/attend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
