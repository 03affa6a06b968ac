// Package main is the entry point for the layerplane CLI.
// The CLI is the operator terminal tool for interacting with the layerplane API.
package main

import (
	"os"

	"layerplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
