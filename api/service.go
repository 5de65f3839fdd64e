// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves the engine over JSON-RPC.
package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/coherence"
	"github.com/luxfi/resonance/config"
	"github.com/luxfi/resonance/ledger"
	"github.com/luxfi/resonance/scheduler"
	"github.com/luxfi/resonance/sensor"
	"github.com/luxfi/resonance/utils/json"
	utilmetric "github.com/luxfi/resonance/utils/metric"
)

// ServiceName is the JSON-RPC service prefix, as in "resonance.prepare".
const ServiceName = "resonance"

var (
	ErrInvalidThreshold = errors.New("invalid quorum threshold")
	ErrInvalidTrials    = errors.New("invalid trials")

	errUnknownPreparation = errors.New("unknown preparation")
)

// EmptyReply indicates that an api doesn't have a response to return.
type EmptyReply struct{}

type Service struct {
	log    log.Logger
	engine *resonance.Engine
}

// NewService returns the JSON-RPC handler for [engine]. Request metrics are
// registered on the engine's registry.
func NewService(logger log.Logger, engine *resonance.Engine) (http.Handler, error) {
	interceptor, err := utilmetric.NewAPIInterceptor(resonance.Namespace, engine.Registerer())
	if err != nil {
		return nil, fmt.Errorf("failed to register API metrics: %w", err)
	}

	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(interceptor.InterceptRequest)
	server.RegisterAfterFunc(interceptor.AfterRequest)
	return server, server.RegisterService(
		&Service{
			log:    logger,
			engine: engine,
		},
		ServiceName,
	)
}

type RegisterArgs struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
	Site     string `json:"site"`
}

type RegisterReply struct {
	// Count is the site's participant count after the registration.
	Count json.Uint64 `json:"count"`
}

// Register adds a participant to a site.
func (s *Service) Register(_ *http.Request, args *RegisterArgs, reply *RegisterReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "register"),
		log.String("site", args.Site),
	)

	if err := s.engine.Register(args.Identity, args.Role, args.Site); err != nil {
		return err
	}
	reply.Count = json.Uint64(s.engine.Registry.Count(args.Site))
	return nil
}

type QuorumArgs struct {
	// Threshold overrides the configured quorum threshold if non-zero.
	Threshold json.Uint64 `json:"threshold"`
}

type QuorumReply struct {
	Met       bool                   `json:"met"`
	Threshold json.Uint64            `json:"threshold"`
	Sites     map[string]json.Uint64 `json:"sites"`
	Shortfall map[string]int         `json:"shortfall"`
}

// Quorum reports every site's count and whether all of them reach the
// threshold.
func (s *Service) Quorum(_ *http.Request, args *QuorumArgs, reply *QuorumReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "quorum"),
	)

	if args.Threshold > math.MaxInt {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, args.Threshold)
	}
	threshold := int(args.Threshold)
	if threshold == 0 {
		threshold = s.engine.Config.QuorumThreshold
	}

	r := s.engine.Registry
	reply.Threshold = json.Uint64(threshold)
	reply.Met = r.QuorumMet(threshold)
	reply.Shortfall = r.Shortfall(threshold)
	reply.Sites = make(map[string]json.Uint64)
	for _, site := range r.SiteNames() {
		reply.Sites[site] = json.Uint64(r.Count(site))
	}
	return nil
}

type EstimateArgs struct {
	A      json.Float64 `json:"a"`
	B      json.Float64 `json:"b"`
	Trials json.Uint64  `json:"trials"`
}

type EstimateReply struct {
	coherence.Result
}

// Estimate samples the coherence between two inputs on a fork of the engine's
// estimator. Trials defaults to the configured trials per pair.
func (s *Service) Estimate(_ *http.Request, args *EstimateArgs, reply *EstimateReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "estimate"),
	)

	if args.Trials > config.MaxTrialsPerPair {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidTrials, args.Trials, config.MaxTrialsPerPair)
	}
	trials := int(args.Trials)
	if trials == 0 {
		trials = s.engine.Config.TrialsPerPair
	}
	reply.Result = s.engine.Estimator.Fork().Estimate(float64(args.A), float64(args.B), trials)
	return nil
}

type PreparationReply struct {
	*scheduler.Preparation
}

// Prepare runs the activation protocol over the configured sites. An unmet
// quorum is reported in the reply's status, not as an error.
func (s *Service) Prepare(r *http.Request, _ *struct{}, reply *PreparationReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "prepare"),
	)

	prep, err := s.engine.Prepare(r.Context())
	if err != nil {
		return err
	}
	reply.Preparation = prep
	return nil
}

type GetPreparationArgs struct {
	ID ids.ID `json:"id"`
}

// GetPreparation returns a recent preparation.
func (s *Service) GetPreparation(_ *http.Request, args *GetPreparationArgs, reply *PreparationReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getPreparation"),
		log.Stringer("id", args.ID),
	)

	prep, ok := s.engine.Scheduler.Lookup(args.ID)
	if !ok {
		return errUnknownPreparation
	}
	reply.Preparation = prep
	return nil
}

type RescheduleArgs struct {
	TargetTime time.Time `json:"targetTime"`
}

// Reschedule moves the activation.
func (s *Service) Reschedule(_ *http.Request, args *RescheduleArgs, _ *EmptyReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "reschedule"),
	)

	s.engine.Scheduler.Reschedule(args.TargetTime)
	return nil
}

type StatusReply struct {
	Status     scheduler.Status `json:"status"`
	TargetTime time.Time        `json:"targetTime"`
	Supply     json.Uint64      `json:"supply"`
	Reserve    json.Float64     `json:"reserve"`
}

func (s *Service) Status(_ *http.Request, _ *struct{}, reply *StatusReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "status"),
	)

	reply.Status = s.engine.Scheduler.Status()
	reply.TargetTime = s.engine.Scheduler.TargetTime()
	reply.Supply = json.Uint64(s.engine.Ledger.Supply())
	reply.Reserve = json.Float64(s.engine.Ledger.Reserve())
	return nil
}

type GetEntriesArgs struct {
	// Since is the first sequence number to return.
	Since json.Uint64 `json:"since"`
}

type GetEntriesReply struct {
	Entries []ledger.Entry `json:"entries"`
}

// GetEntries returns ledger entries in append order.
func (s *Service) GetEntries(_ *http.Request, args *GetEntriesArgs, reply *GetEntriesReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getEntries"),
	)

	reply.Entries = s.engine.Ledger.EntriesSince(uint64(args.Since))
	if reply.Entries == nil {
		reply.Entries = []ledger.Entry{}
	}
	return nil
}

type CaptureArgs struct {
	Identity string `json:"identity"`
	Location string `json:"location"`
}

type CaptureReply struct {
	sensor.Reading
}

// Capture takes a biofield reading from a registered participant.
func (s *Service) Capture(_ *http.Request, args *CaptureArgs, reply *CaptureReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "capture"),
	)

	reading, err := s.engine.Capture(args.Identity, args.Location)
	if err != nil {
		return err
	}
	reply.Reading = reading
	return nil
}
