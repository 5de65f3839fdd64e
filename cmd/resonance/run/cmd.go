// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/scheduler"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Registers participants at every site and prepares the activation",
		RunE:  runFunc,
	}
	AddFlags(c.Flags())
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	logger := log.NewLogger("resonance")
	factory := &resonance.Factory{Config: config.Config}
	engine, err := factory.New(logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
	}()

	prep, err := Drive(c.Context(), logger, engine, config.PerRole, config.Capture)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	switch prep.Status {
	case scheduler.StatusPrepared:
		fmt.Fprintln(out, prep)
		fmt.Fprintf(out, "credit %s distributed to %d sites, activation at %s\n",
			prep.CreditID,
			len(prep.Transfers),
			prep.TargetTime.UTC().Format("2006-01-02 15:04 MST"),
		)
	default:
		fmt.Fprintf(out, "activation requirements not met: %v\n", prep.Shortfall)
	}

	if config.Export == "" {
		return nil
	}
	if err := Export(engine, config.Export); err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	logger.Info("exported ledger",
		log.String("path", config.Export),
		log.Int("entries", engine.Ledger.Len()),
	)
	return nil
}
