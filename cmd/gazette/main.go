package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.message != "" {
				fmt.Fprintln(os.Stderr, exit.message)
			}
			os.Exit(exit.code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitError carries a specific process exit code through cobra. A partial
// run (report rendered, PDF missing) exits 2 so cron wrappers can tell it
// apart from a fatal failure.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}
