// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/resonance/coherence"
	"github.com/luxfi/resonance/ledger"
)

var errUnknownStatus = errors.New("unknown status")

// Status is the outcome of the most recent preparation.
type Status uint8

const (
	// StatusPending is the initial status, before any preparation succeeded.
	StatusPending Status = iota
	// StatusPrepared means the last preparation completed every step.
	StatusPrepared
	// StatusUnmet is reported on a Preparation whose quorum check failed. It
	// is never the scheduler's own status.
	StatusUnmet
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPrepared:
		return "prepared"
	case StatusUnmet:
		return "unmet"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatusPending
	case "prepared":
		*s = StatusPrepared
	case "unmet":
		*s = StatusUnmet
	default:
		return fmt.Errorf("%w: %q", errUnknownStatus, text)
	}
	return nil
}

// Preparation is the record of one Prepare call.
type Preparation struct {
	ID         ids.ID    `json:"id"`
	Status     Status    `json:"status"`
	TargetTime time.Time `json:"targetTime"`
	// Pairs maps "{site_i}-{site_j}" to the estimated coherence.
	Pairs     map[string]float64 `json:"pairs,omitempty"`
	Results   []PairResult       `json:"results,omitempty"`
	CreditID  ledger.CreditID    `json:"creditID,omitempty"`
	Transfers []ledger.Entry     `json:"transfers,omitempty"`
	// Shortfall is set when Status is StatusUnmet.
	Shortfall map[string]int `json:"shortfall,omitempty"`
}

func (p *Preparation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "preparation %s: %s", p.ID, p.Status)
	for _, r := range p.Results {
		fmt.Fprintf(&sb, "\n  %s: %s", r.Key, r.Result)
	}
	return sb.String()
}

// PairResult is the estimate for one site pair.
type PairResult struct {
	Key string `json:"key"`
	coherence.Result
}

// PairKey names the site pair (a, b).
func PairKey(a, b string) string {
	return a + "-" + b
}

type pair struct {
	key  string
	a, b float64
}

// pairsOf returns every i<j pair of [sites] in order, with surrogate inputs
// i*SurrogateStep and j*SurrogateStep.
func pairsOf(sites []string) []pair {
	var pairs []pair
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			pairs = append(pairs, pair{
				key: PairKey(sites[i], sites[j]),
				a:   float64(i * SurrogateStep),
				b:   float64(j * SurrogateStep),
			})
		}
	}
	return pairs
}
