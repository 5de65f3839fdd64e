// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

const roleLabel = "role"

// Metrics tracks registrations. A nil *Metrics records nothing.
type Metrics struct {
	registrations metric.CounterVec
	rejected      metric.Counter
	sites         metric.Gauge
}

func NewMetrics(namespace string, registerer metric.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: metric.NewCounterVec(
			metric.CounterOpts{
				Name: metric.AppendNamespace(namespace, "registrations"),
				Help: "Number of accepted registrations",
			},
			[]string{roleLabel},
		),
		rejected: metric.NewCounter(metric.CounterOpts{
			Name: metric.AppendNamespace(namespace, "registrations_rejected"),
			Help: "Number of registrations rejected for an invalid role",
		}),
		sites: metric.NewGauge(metric.GaugeOpts{
			Name: metric.AppendNamespace(namespace, "sites"),
			Help: "Number of sites with at least one registration",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.registrations)),
		registerer.Register(metric.AsCollector(m.rejected)),
		registerer.Register(metric.AsCollector(m.sites)),
	)
	return m, errs.Err
}

func (m *Metrics) register(role Role) {
	if m == nil {
		return
	}
	m.registrations.With(metric.Labels{roleLabel: role.String()}).Inc()
}

func (m *Metrics) reject() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

func (m *Metrics) setSites(n int) {
	if m == nil {
		return
	}
	m.sites.Set(float64(n))
}
