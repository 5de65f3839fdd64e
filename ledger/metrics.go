// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/utils/wrappers"
)

// Metrics tracks ledger appends. A nil *Metrics records nothing.
type Metrics struct {
	mints     metric.Counter
	transfers metric.Counter
	supply    metric.Gauge
	reserve   metric.Gauge
}

func NewMetrics(namespace string, registerer metric.Registerer) (*Metrics, error) {
	m := &Metrics{
		mints: metric.NewCounter(metric.CounterOpts{
			Name: metric.AppendNamespace(namespace, "ledger_mints"),
			Help: "Number of credit batches minted",
		}),
		transfers: metric.NewCounter(metric.CounterOpts{
			Name: metric.AppendNamespace(namespace, "ledger_transfers"),
			Help: "Number of credit transfers recorded",
		}),
		supply: metric.NewGauge(metric.GaugeOpts{
			Name: metric.AppendNamespace(namespace, "ledger_supply"),
			Help: "Number of credits in the ledger",
		}),
		reserve: metric.NewGauge(metric.GaugeOpts{
			Name: metric.AppendNamespace(namespace, "ledger_reserve"),
			Help: "Total amount minted into the ledger",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.mints)),
		registerer.Register(metric.AsCollector(m.transfers)),
		registerer.Register(metric.AsCollector(m.supply)),
		registerer.Register(metric.AsCollector(m.reserve)),
	)
	return m, errs.Err
}

func (m *Metrics) observe(e Entry, supply uint64, reserve float64) {
	if m == nil {
		return
	}
	switch e.Kind {
	case KindMint:
		m.mints.Inc()
	case KindTransfer:
		m.transfers.Inc()
	}
	m.supply.Set(float64(supply))
	m.reserve.Set(reserve)
}
