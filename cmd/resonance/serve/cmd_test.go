// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/api"
	"github.com/luxfi/resonance/config"
	"github.com/luxfi/resonance/scheduler"
)

func TestServe(t *testing.T) {
	require := require.New(t)

	c := config.DefaultConfig()
	f := &resonance.Factory{Config: c}
	engine, err := f.New(log.NewNoOpLogger())
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	base := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, log.NewNoOpLogger(), engine, listener, c.HTTP)
	}()

	body, err := json2.EncodeClientRequest(api.ServiceName+".status", &struct{}{})
	require.NoError(err)
	resp, err := http.Post(base+"/ext/resonance", "application/json", bytes.NewReader(body))
	require.NoError(err)
	status := api.StatusReply{}
	require.NoError(json2.DecodeClientResponse(resp.Body, &status))
	require.NoError(resp.Body.Close())
	require.Equal(scheduler.StatusPending, status.Status)
	require.True(c.EventTime.Equal(status.TargetTime))

	resp, err = http.Get(base + "/ext/metrics")
	require.NoError(err)
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Contains(string(metrics), "api_requests_total")

	cancel()
	require.NoError(<-done)
}
