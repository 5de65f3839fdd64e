// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrictest reads gathered metric values in tests.
package metrictest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"
)

// Value returns the value of the series of the family [name] carrying every
// label in [labels], given as name, value pairs. Histograms report their
// sample count.
func Value(t testing.TB, gatherer metric.Gatherer, name string, labels ...string) float64 {
	t.Helper()
	require.Zero(t, len(labels)%2, "labels must be name, value pairs")

	families, err := gatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			if !hasLabels(got, labels) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	require.FailNow(t, "metric not found", "%s %v", name, labels)
	return 0
}

// Names returns the name of every gathered family.
func Names(t testing.TB, gatherer metric.Gatherer) []string {
	t.Helper()

	families, err := gatherer.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	return names
}

func hasLabels(got map[string]string, labels []string) bool {
	for i := 0; i+1 < len(labels); i += 2 {
		if got[labels[i]] != labels[i+1] {
			return false
		}
	}
	return true
}
