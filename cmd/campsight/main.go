// Package main is the entry point for the campsight CLI.
package main

import (
	"os"

	"github.com/campsight/campsight/internal/cli"
	"github.com/campsight/campsight/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps failures to the process exit code.
// Split from main so tests can reference it.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		// Cobra has already printed the error to stderr.
		return 1
	}
	return 0
}
