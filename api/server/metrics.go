// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"time"

	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

type metrics struct {
	requests metric.CounterVec
	duration metric.HistogramVec
	inflight metric.Gauge
}

func newMetrics(registerer metric.Registerer) (*metrics, error) {
	m := &metrics{
		requests: registerer.NewCounterVec("api_requests_total", "Total number of API requests", []string{"method", "endpoint"}),
		duration: registerer.NewHistogramVec("api_request_duration_seconds", "API request duration in seconds", []string{"method", "endpoint"}, nil),
		inflight: registerer.NewGauge("api_requests_inflight", "Number of inflight API requests"),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.requests)),
		registerer.Register(metric.AsCollector(m.duration)),
		registerer.Register(metric.AsCollector(m.inflight)),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return m, nil
}

func (m *metrics) wrapHandler(endpoint string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.WithLabelValues(r.Method, endpoint).Inc()
		m.inflight.Inc()
		defer m.inflight.Dec()

		start := time.Now()
		defer func() {
			m.duration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		}()

		handler.ServeHTTP(w, r)
	})
}
