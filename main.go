// Package main is the entry point for the worklens CLI application.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tmazur/worklens/cmd"
	"github.com/tmazur/worklens/internal/config"
)

// Exit codes form a small closed set so scripts can distinguish
// configuration problems from upstream failures.
const (
	exitOK     = 0
	exitAPI    = 1
	exitConfig = 2
)

// main executes the root command and maps its error to an exit code.
func main() {
	err := cmd.Execute()
	if err == nil {
		os.Exit(exitOK)
	}

	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, config.ErrInvalid) {
		os.Exit(exitConfig)
	}
	os.Exit(exitAPI)
}
