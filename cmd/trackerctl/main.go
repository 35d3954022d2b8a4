// Command trackerctl is the admin CLI for the finance tracker: schema
// migrations, record maintenance and terminal reports.
package main

import (
	"os"

	"fintrack/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
