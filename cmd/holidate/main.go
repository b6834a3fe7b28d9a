// Package main provides the entry point for the holidate CLI.
package main

import (
	"github.com/colthorp/holidate/internal/cli"
)

func main() {
	cli.Execute()
}
