// Package main is the entry point for the TaskWiser payout CLI.
package main

import (
	"os"

	"github.com/Asad272002/TaskWiser-V2/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
