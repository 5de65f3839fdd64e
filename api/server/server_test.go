// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

func newTestServer(t *testing.T, listener net.Listener) (*Server, metric.Registry) {
	t.Helper()
	reg := metric.NewRegistry()
	s, err := New(log.NewNoOpLogger(), listener, []string{"*"}, time.Second, reg, HTTPConfig{})
	require.NoError(t, err)
	return s, reg
}

func TestAddRoute(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, nil)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "resonance", ""))
	require.ErrorIs(s.AddRoute(http.NotFoundHandler(), "resonance", ""), errRouteExists)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ext/resonance", nil))
	require.Equal(http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ext/unknown", nil))
	require.Equal(http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	require := require.New(t)

	s, err := New(
		log.NewNoOpLogger(),
		nil,
		[]string{"https://example.org"},
		time.Second,
		metric.NewRegistry(),
		HTTPConfig{},
	)
	require.NoError(err)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), "resonance", ""))

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "https://example.org", want: "https://example.org"},
		{origin: "https://elsewhere.org", want: ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/ext/resonance", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		require.Equal(tt.want, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestMetricsRoute(t *testing.T) {
	require := require.New(t)

	s, reg := newTestServer(t, nil)
	require.NoError(s.AddMetricsRoute(reg))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/metrics", nil))
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), "api_requests_inflight")
}

func TestDispatchAndShutdown(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	s, _ := newTestServer(t, listener)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), "resonance", ""))

	done := make(chan error, 1)
	go func() {
		done <- s.Dispatch()
	}()

	resp, err := http.Post("http://"+listener.Addr().String()+"/ext/resonance", "text/plain", strings.NewReader(""))
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal("ok", string(body))

	require.NoError(s.Shutdown())
	require.NoError(<-done)
}
