// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/metric/metrictest"
)

func TestMetricsRegistrationFailure(t *testing.T) {
	require := require.New(t)

	reg := metric.NewRegistry()
	m, err := newMetrics(reg)
	require.NoError(err)
	require.NotNil(m)

	// Second registration should fail due to duplicate metrics
	m, err = newMetrics(reg)
	require.Error(err)
	require.Nil(m)
}

func TestWrapHandler(t *testing.T) {
	require := require.New(t)

	reg := metric.NewRegistry()
	m, err := newMetrics(reg)
	require.NoError(err)

	var inflight float64
	handler := m.wrapHandler("resonance", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inflight = metrictest.Value(t, reg, "api_requests_inflight")
		w.WriteHeader(http.StatusTeapot)
	}))

	for range 3 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(http.StatusTeapot, w.Code)
	}

	require.Equal(1.0, inflight)
	require.Zero(metrictest.Value(t, reg, "api_requests_inflight"))
	require.Equal(3.0, metrictest.Value(t, reg, "api_requests_total", "method", http.MethodPost, "endpoint", "resonance"))
	require.Equal(3.0, metrictest.Value(t, reg, "api_request_duration_seconds", "method", http.MethodPost, "endpoint", "resonance"))
}
