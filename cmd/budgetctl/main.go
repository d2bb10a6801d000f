package main

import (
	"context"
	"fmt"
	"os"

	"budgetbuddy/internal/cli"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())

	s := &session{}
	root := newRootCmd(s)
	err := root.ExecuteContext(ctx)
	s.close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
