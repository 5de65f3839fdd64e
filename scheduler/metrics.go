// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"time"

	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

const statusLabel = "status"

// durationBuckets spans 1ms to about 16s.
var durationBuckets = []float64{0.001, 0.004, 0.016, 0.064, 0.256, 1.024, 4.096, 16.384}

// Metrics tracks preparations. A nil *Metrics records nothing.
type Metrics struct {
	preparations metric.CounterVec
	duration     metric.HistogramVec
}

func NewMetrics(namespace string, registerer metric.Registerer) (*Metrics, error) {
	m := &Metrics{
		preparations: metric.NewCounterVec(
			metric.CounterOpts{
				Name: metric.AppendNamespace(namespace, "preparations"),
				Help: "Number of completed preparations by outcome",
			},
			[]string{statusLabel},
		),
		duration: registerer.NewHistogramVec(
			metric.AppendNamespace(namespace, "preparation_duration_seconds"),
			"Time spent in completed preparations",
			[]string{statusLabel},
			durationBuckets,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.preparations)),
		registerer.Register(metric.AsCollector(m.duration)),
	)
	return m, errs.Err
}

func (m *Metrics) observe(status Status, d time.Duration) {
	if m == nil {
		return
	}
	label := status.String()
	m.preparations.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(d.Seconds())
}
