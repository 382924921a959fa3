// Package main is the entry point for the svcrpt CLI application.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/eykd/svcrpt/cmd"
)

func main() {
	// Create a context that is cancelled on SIGINT (Ctrl+C).
	// This enables graceful shutdown for long-running operations.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
