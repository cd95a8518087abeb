// Package main provides the tusk command.
package main

import (
	"os"

	"github.com/willibrandon/tusk-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
