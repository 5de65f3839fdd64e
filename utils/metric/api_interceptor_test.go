// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/metric/metrictest"
)

var errTest = errors.New("non-nil error")

func TestAPIInterceptor(t *testing.T) {
	require := require.New(t)

	registry := metric.NewRegistry()
	interceptor, err := NewAPIInterceptor("resonance", registry)
	require.NoError(err)

	for _, callErr := range []error{nil, errTest} {
		info := &rpc.RequestInfo{
			Method:  "resonance.Prepare",
			Request: httptest.NewRequest(http.MethodPost, "/", nil),
		}
		info.Request = interceptor.InterceptRequest(info)
		info.Error = callErr
		interceptor.AfterRequest(info)
	}

	// a request that skipped interception is not recorded
	interceptor.AfterRequest(&rpc.RequestInfo{
		Method:  "resonance.Status",
		Request: httptest.NewRequest(http.MethodPost, "/", nil),
	})

	requests := metric.AppendNamespace("resonance", "rpc_requests")
	require.Equal(2.0, metrictest.Value(t, registry, requests, methodLabel, "resonance.Prepare"))
	duration := metric.AppendNamespace("resonance", "rpc_request_duration_seconds")
	require.Equal(2.0, metrictest.Value(t, registry, duration, methodLabel, "resonance.Prepare"))
	failures := metric.AppendNamespace("resonance", "rpc_request_errors")
	require.Equal(1.0, metrictest.Value(t, registry, failures, methodLabel, "resonance.Prepare"))

	_, err = NewAPIInterceptor("resonance", registry)
	require.Error(err)
}
