// Package main is the entry point for the levelquote CLI.
package main

import (
	"os"

	"github.com/sensorline/levelquote/cmd/levelquote/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
