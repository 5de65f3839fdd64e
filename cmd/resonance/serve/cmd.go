// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/api"
	"github.com/luxfi/resonance/api/server"
	"github.com/luxfi/resonance/cmd/resonance/flags"
	"github.com/luxfi/resonance/config"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the engine over JSON-RPC",
		RunE:  serveFunc,
	}
	flags.AddFlags(c.Flags())
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	config, err := flags.ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	logger := log.NewLogger("resonance")
	factory := &resonance.Factory{Config: config}
	engine, err := factory.New(logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
	}()

	listener, err := net.Listen("tcp", config.HTTP.Address())
	if err != nil {
		return err
	}
	return Serve(c.Context(), logger, engine, listener, config.HTTP)
}

// Serve exposes [engine] on [listener] at /ext/resonance, and its metrics at
// /ext/metrics, until [ctx] is done. The listener is closed on return.
func Serve(
	ctx context.Context,
	logger log.Logger,
	engine *resonance.Engine,
	listener net.Listener,
	httpConfig config.HTTP,
) error {
	srv, err := server.New(
		logger,
		listener,
		httpConfig.AllowedOrigins,
		httpConfig.ShutdownTimeout,
		engine.Registerer(),
		server.HTTPConfig{ReadHeaderTimeout: httpConfig.ReadHeaderTimeout},
	)
	if err != nil {
		_ = listener.Close()
		return err
	}

	service, err := api.NewService(logger, engine)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := srv.AddRoute(service, api.ServiceName, ""); err != nil {
		_ = listener.Close()
		return err
	}
	if err := srv.AddMetricsRoute(engine.Gatherer()); err != nil {
		_ = listener.Close()
		return err
	}

	logger.Info("serving",
		log.String("address", listener.Addr().String()),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Dispatch)
	eg.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown()
	})
	return eg.Wait()
}
