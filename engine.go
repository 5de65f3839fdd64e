// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package resonance wires the coherence engine together: a participant
// registry, a coherence estimator, a credit ledger and the scheduler that
// coordinates them.
package resonance

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/resonance/coherence"
	"github.com/luxfi/resonance/config"
	"github.com/luxfi/resonance/ledger"
	"github.com/luxfi/resonance/registry"
	"github.com/luxfi/resonance/scheduler"
	"github.com/luxfi/resonance/sensor"
	"github.com/luxfi/resonance/utils/timer/mockable"
	"github.com/luxfi/resonance/utils/wrappers"
)

// Namespace prefixes every metric.
const Namespace = "resonance"

var ErrUnknownParticipant = errors.New("unknown participant")

// Engine owns one independent coordination run.
type Engine struct {
	Config config.Config

	log     log.Logger
	clock   *mockable.Clock
	db      database.Database
	metrics metric.Registry
	// runtime holds the Go and process collectors.
	runtime *prometheus.Registry

	Registry  *registry.Registry
	Estimator *coherence.Estimator
	Ledger    *ledger.Ledger
	Scheduler *scheduler.Scheduler

	nodesLock sync.Mutex
	// nodeSrc seeds each node's stream in registration order.
	nodeSrc rand.Source
	nodes   map[string]*sensor.Node
}

func newEngine(
	c config.Config,
	db database.Database,
	clock *mockable.Clock,
	logger log.Logger,
) (*Engine, error) {
	if db == nil {
		db = memdb.New()
	}
	if clock == nil {
		clock = &mockable.Clock{}
	}

	e := &Engine{
		Config:  c,
		log:     logger,
		clock:   clock,
		db:      db,
		metrics: metric.NewRegistry(),
		runtime: prometheus.NewRegistry(),
		nodeSrc: rand.NewPCG(c.Seed, ^c.Seed),
		nodes:   make(map[string]*sensor.Node),
	}

	coherenceMetrics, err := coherence.NewMetrics(Namespace, e.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register coherence metrics: %w", err)
	}
	registryMetrics, err := registry.NewMetrics(Namespace, e.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register registry metrics: %w", err)
	}
	ledgerMetrics, err := ledger.NewMetrics(Namespace, e.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register ledger metrics: %w", err)
	}
	schedulerMetrics, err := scheduler.NewMetrics(Namespace, e.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
	}
	errs := wrappers.Errs{}
	errs.Add(
		e.runtime.Register(collectors.NewGoCollector()),
		e.runtime.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
	if errs.Errored() {
		return nil, errs.Err
	}

	e.Registry = registry.New(registry.Config{
		Log:     logger,
		Metrics: registryMetrics,
	})
	e.Estimator = coherence.NewSeeded(c.Seed, coherence.WithMetrics(coherenceMetrics))
	e.Ledger, err = ledger.Open(
		context.Background(),
		db,
		clock,
		ledger.WithPrefix(c.CreditPrefix),
		ledger.WithLogger(logger),
		ledger.WithMetrics(ledgerMetrics),
	)
	if err != nil {
		return nil, err
	}
	e.Scheduler, err = scheduler.New(
		scheduler.Config{
			TargetTime:       c.EventTime,
			QuorumThreshold:  c.QuorumThreshold,
			Originator:       c.Originator,
			PrepareTimeout:   c.PrepareTimeout,
			MaxParallelPairs: c.MaxParallelPairs,
			HistorySize:      c.HistorySize,
		},
		e.Registry,
		e.Estimator,
		e.Ledger,
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(schedulerMetrics),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("created engine",
		log.Int("sites", len(c.Sites)),
		log.Int("quorumThreshold", c.QuorumThreshold),
		log.Time("eventTime", c.EventTime),
	)
	return e, nil
}

// Register adds a participant and gives them a sensor node.
func (e *Engine) Register(identity, role, site string) error {
	if err := e.Registry.RegisterName(identity, role, site); err != nil {
		return err
	}

	e.nodesLock.Lock()
	defer e.nodesLock.Unlock()

	if _, ok := e.nodes[identity]; !ok {
		src := rand.NewPCG(e.nodeSrc.Uint64(), e.nodeSrc.Uint64())
		e.nodes[identity] = sensor.NewNode(identity, src, e.Estimator.Fork(), e.clock, e.log)
	}
	return nil
}

// Node returns the sensor node of a registered participant.
func (e *Engine) Node(identity string) (*sensor.Node, error) {
	e.nodesLock.Lock()
	defer e.nodesLock.Unlock()

	n, ok := e.nodes[identity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParticipant, identity)
	}
	return n, nil
}

// Capture takes a biofield reading from a registered participant's node.
func (e *Engine) Capture(identity, location string) (sensor.Reading, error) {
	n, err := e.Node(identity)
	if err != nil {
		return sensor.Reading{}, err
	}
	return n.CaptureBiofield(location), nil
}

// Prepare runs the scheduler over the configured sites.
func (e *Engine) Prepare(ctx context.Context) (*scheduler.Preparation, error) {
	return e.Scheduler.Prepare(ctx, e.Config.SiteNames(), e.Config.TrialsPerPair, e.Config.MintAmount)
}

// Gatherer exposes the engine's metrics together with the Go runtime and
// process metrics.
func (e *Engine) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{e.metrics, e.runtime}
}

// Registerer lets surrounding components add their metrics to the engine's.
func (e *Engine) Registerer() metric.Registry {
	return e.metrics
}

func (e *Engine) Close() error {
	return e.db.Close()
}
