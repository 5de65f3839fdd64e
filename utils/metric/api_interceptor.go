// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package utilmetric holds metrics shared by the JSON-RPC services.
package utilmetric

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"

	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

const methodLabel = "method"

// APIInterceptor records per-method request counts, latencies and errors of
// a gorilla/rpc server.
type APIInterceptor interface {
	InterceptRequest(i *rpc.RequestInfo) *http.Request
	AfterRequest(i *rpc.RequestInfo)
}

type contextKey int

const requestTimestampKey contextKey = iota

type apiInterceptor struct {
	requests metric.CounterVec
	duration metric.HistogramVec
	errors   metric.CounterVec
}

func NewAPIInterceptor(namespace string, registerer metric.Registerer) (APIInterceptor, error) {
	labels := []string{methodLabel}
	a := &apiInterceptor{
		requests: metric.NewCounterVec(
			metric.CounterOpts{
				Name: metric.AppendNamespace(namespace, "rpc_requests"),
				Help: "Number of times this type of request was made",
			},
			labels,
		),
		duration: registerer.NewHistogramVec(
			metric.AppendNamespace(namespace, "rpc_request_duration_seconds"),
			"Time spent handling this type of request",
			labels,
			nil,
		),
		errors: metric.NewCounterVec(
			metric.CounterOpts{
				Name: metric.AppendNamespace(namespace, "rpc_request_errors"),
				Help: "Number of request errors",
			},
			labels,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(a.requests)),
		registerer.Register(metric.AsCollector(a.duration)),
		registerer.Register(metric.AsCollector(a.errors)),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return a, nil
}

func (*apiInterceptor) InterceptRequest(i *rpc.RequestInfo) *http.Request {
	ctx := context.WithValue(i.Request.Context(), requestTimestampKey, time.Now())
	return i.Request.WithContext(ctx)
}

func (a *apiInterceptor) AfterRequest(i *rpc.RequestInfo) {
	start, ok := i.Request.Context().Value(requestTimestampKey).(time.Time)
	if !ok {
		return
	}

	a.requests.WithLabelValues(i.Method).Inc()
	a.duration.WithLabelValues(i.Method).Observe(time.Since(start).Seconds())
	if i.Error != nil {
		a.errors.WithLabelValues(i.Method).Inc()
	}
}
