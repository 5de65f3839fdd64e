// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scheduler coordinates a multi-site activation: it holds the target
// time and runs the prepare protocol of quorum check, all-pairs coherence
// estimation and credit distribution.
package scheduler

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/cache/lru"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/resonance/coherence"
	"github.com/luxfi/resonance/ledger"

	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	// SurrogateStep spaces the estimator inputs derived from pair indices.
	SurrogateStep = 144

	// DefaultOriginator is the source of every credit transfer.
	DefaultOriginator = "RESONANCE_CORE"

	tracerName = "github.com/luxfi/resonance/scheduler"
)

var (
	ErrInvalidTrials  = errors.New("trials per pair must be positive")
	ErrInvalidHistory = errors.New("history size must be positive")
)

// Quorum reports whether every registered site has enough participants.
type Quorum interface {
	QuorumMet(threshold int) bool
	Shortfall(threshold int) map[string]int
}

// Forker hands out independent estimators, one per site pair.
type Forker interface {
	Fork() *coherence.Estimator
}

// Ledger records the credits issued by a preparation.
type Ledger interface {
	Mint(amount float64) (ledger.CreditID, error)
	Transfer(from, to string, id ledger.CreditID) (ledger.Entry, error)
}

type Config struct {
	TargetTime       time.Time
	QuorumThreshold  int
	Originator       string
	PrepareTimeout   time.Duration
	MaxParallelPairs int
	HistorySize      int
}

type Option func(*Scheduler)

func WithLogger(logger log.Logger) Option {
	return func(s *Scheduler) {
		s.log = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func WithTracer(tracer oteltrace.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = tracer
	}
}

type Scheduler struct {
	config    Config
	quorum    Quorum
	estimator Forker
	ledger    Ledger
	log       log.Logger
	metrics   *Metrics
	tracer    oteltrace.Tracer

	// prepareLock serializes Prepare calls.
	prepareLock sync.Mutex
	invocations uint64

	mu         sync.RWMutex
	targetTime time.Time
	status     Status

	// history holds recent preparations by ID.
	history *lru.Cache[ids.ID, *Preparation]
}

func New(
	config Config,
	quorum Quorum,
	estimator Forker,
	ledger Ledger,
	opts ...Option,
) (*Scheduler, error) {
	if config.HistorySize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHistory, config.HistorySize)
	}
	if config.Originator == "" {
		config.Originator = DefaultOriginator
	}

	s := &Scheduler{
		config:     config,
		quorum:     quorum,
		estimator:  estimator,
		ledger:     ledger,
		log:        log.NewNoOpLogger(),
		tracer:     otel.Tracer(tracerName),
		targetTime: config.TargetTime,
		status:     StatusPending,
		history:    lru.NewCache[ids.ID, *Preparation](config.HistorySize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reschedule overwrites the target time.
func (s *Scheduler) Reschedule(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("rescheduled activation",
		log.Time("from", s.targetTime),
		log.Time("to", t),
	)
	s.targetTime = t
}

func (s *Scheduler) TargetTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.targetTime
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Lookup returns a recent preparation by ID.
func (s *Scheduler) Lookup(id ids.ID) (*Preparation, bool) {
	return s.history.Get(id)
}

// Prepare runs the activation protocol over [sites] in order.
//
// If any registered site is below quorum, the returned preparation has
// StatusUnmet and nothing is estimated or written. Otherwise every i<j pair
// is estimated, one credit of [mintAmount] is minted and it is transferred
// from the originator to each site. Calling Prepare again redoes all of it.
//
// Errors from the ledger or the context are returned as is; no step is
// retried and ledger writes made before the failure are kept.
func (s *Scheduler) Prepare(
	ctx context.Context,
	sites []string,
	trialsPerPair int,
	mintAmount float64,
) (*Preparation, error) {
	if trialsPerPair < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrials, trialsPerPair)
	}

	s.prepareLock.Lock()
	defer s.prepareLock.Unlock()

	if s.config.PrepareTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.PrepareTimeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "Scheduler.Prepare", oteltrace.WithAttributes(
		attribute.Int("sites", len(sites)),
		attribute.Int("trialsPerPair", trialsPerPair),
		attribute.Float64("mintAmount", mintAmount),
	))
	defer span.End()

	start := time.Now()
	prep, err := s.prepare(ctx, sites, trialsPerPair, mintAmount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("preparation failed",
			log.Int("sites", len(sites)),
			log.Err(err),
		)
		return nil, err
	}
	span.SetAttributes(
		attribute.Stringer("preparationID", prep.ID),
		attribute.Stringer("status", prep.Status),
	)
	s.metrics.observe(prep.Status, time.Since(start))
	s.history.Put(prep.ID, prep)
	return prep, nil
}

func (s *Scheduler) prepare(
	ctx context.Context,
	sites []string,
	trialsPerPair int,
	mintAmount float64,
) (*Preparation, error) {
	s.invocations++
	prep := &Preparation{
		TargetTime: s.TargetTime(),
		Status:     StatusPending,
	}
	prep.ID = preparationID(s.invocations, prep.TargetTime)

	if !s.quorum.QuorumMet(s.config.QuorumThreshold) {
		prep.Status = StatusUnmet
		prep.Shortfall = s.quorum.Shortfall(s.config.QuorumThreshold)
		s.log.Info("quorum not met",
			log.Stringer("preparationID", prep.ID),
			log.Int("threshold", s.config.QuorumThreshold),
			log.Reflect("shortfall", prep.Shortfall),
		)
		return prep, nil
	}

	results, err := s.estimate(ctx, pairsOf(sites), trialsPerPair)
	if err != nil {
		return nil, err
	}
	prep.Results = results
	prep.Pairs = make(map[string]float64, len(results))
	for _, r := range results {
		prep.Pairs[r.Key] = r.Coherence
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	creditID, err := s.ledger.Mint(mintAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to mint credit: %w", err)
	}
	prep.CreditID = creditID

	for _, site := range sites {
		e, err := s.ledger.Transfer(s.config.Originator, site, creditID)
		if err != nil {
			return nil, fmt.Errorf("failed to transfer %s to %s: %w", creditID, site, err)
		}
		prep.Transfers = append(prep.Transfers, e)
	}

	prep.Status = StatusPrepared
	s.mu.Lock()
	s.status = StatusPrepared
	s.mu.Unlock()

	s.log.Info("activation prepared",
		log.Stringer("preparationID", prep.ID),
		log.Int("pairs", len(results)),
		log.String("creditID", string(creditID)),
		log.Time("targetTime", prep.TargetTime),
	)
	return prep, nil
}

// estimate runs every pair on its own fork of the estimator. Forks are taken
// in pair order so that results do not depend on scheduling.
func (s *Scheduler) estimate(ctx context.Context, pairs []pair, trials int) ([]PairResult, error) {
	forks := make([]*coherence.Estimator, len(pairs))
	for i := range pairs {
		forks[i] = s.estimator.Fork()
	}

	results := make([]PairResult, len(pairs))
	eg, ctx := errgroup.WithContext(ctx)
	if s.config.MaxParallelPairs > 0 {
		eg.SetLimit(s.config.MaxParallelPairs)
	}
	for i, p := range pairs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := forks[i].Estimate(p.a, p.b, trials)
			results[i] = PairResult{Key: p.key, Result: r}
			s.log.Debug("estimated pair",
				log.String("pair", p.key),
				log.Stringer("result", r),
			)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func preparationID(n uint64, target time.Time) ids.ID {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], n)
	binary.BigEndian.PutUint64(buf[8:], uint64(target.UnixNano()))

	var id ids.ID
	copy(id[:], hash.ComputeHash256(buf[:]))
	return id
}
