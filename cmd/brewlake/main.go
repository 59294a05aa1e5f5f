// Package main is the entry point for the brewlake binary.
package main

import (
	"os"

	"brewlake/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
