// Package main is the entry point for trainingctl, the terminal client of the
// training lifecycle API.
package main

import (
	"os"

	"github.com/gartstein/ehs/cmd/trainingctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
