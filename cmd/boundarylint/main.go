// Package main provides the entry point for the boundarylint CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumatoshi-tech/boundarylint/cmd/boundarylint/commands"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err == nil {
		return
	}

	// Remaining problems were already reported.
	if !errors.Is(err, lint.ErrProblemsFound) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(1)
}
