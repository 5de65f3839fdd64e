// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coherence

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

// Metrics counts estimates and tracks the last estimated coherence.
// A nil *Metrics records nothing.
type Metrics struct {
	estimates metric.Counter
	trials    metric.Counter
	coherence metric.Gauge
}

func NewMetrics(namespace string, registerer metric.Registerer) (*Metrics, error) {
	m := &Metrics{
		estimates: metric.NewCounter(metric.CounterOpts{
			Name: metric.AppendNamespace(namespace, "coherence_estimates"),
			Help: "Number of coherence estimates computed",
		}),
		trials: metric.NewCounter(metric.CounterOpts{
			Name: metric.AppendNamespace(namespace, "coherence_trials"),
			Help: "Number of sampling trials drawn for coherence estimates",
		}),
		coherence: metric.NewGauge(metric.GaugeOpts{
			Name: metric.AppendNamespace(namespace, "coherence_last"),
			Help: "Most recently estimated coherence ratio",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.estimates)),
		registerer.Register(metric.AsCollector(m.trials)),
		registerer.Register(metric.AsCollector(m.coherence)),
	)
	return m, errs.Err
}

func (m *Metrics) observe(r Result) {
	if m == nil {
		return
	}
	m.estimates.Inc()
	m.trials.Add(float64(r.Trials))
	m.coherence.Set(r.Coherence)
}
