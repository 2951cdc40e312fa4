// Package main is the entry point for the shopctl CLI.
package main

import (
	"os"

	"github.com/shopctl/shopctl/cmd/shopctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
