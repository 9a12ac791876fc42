package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/wfpack/internal/cli"
	"github.com/arthur-debert/wfpack/pkg/ui"
)

func main() {
	// Interrupts stop the copy and cleanup loops between filesystem operations
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.DefaultStyles().Render("Error", fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
