package main

import (
	"os"

	"github.com/wonny/nasdaq/cmd/nasdaq/commands"
)

// main is the entry point for the NASDAQ client CLI
// ⭐ Unified CLI entry point: go run ./cmd/nasdaq [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
