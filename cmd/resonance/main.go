// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/resonance/cmd/resonance/run"
	"github.com/luxfi/resonance/cmd/resonance/serve"
)

func main() {
	cmd := &cobra.Command{
		Use:   "resonance",
		Short: "Coordinates multi-site activations",
	}
	cmd.AddCommand(
		run.Command(),
		serve.Command(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
