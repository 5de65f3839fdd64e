// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry tracks the participants registered at each site and
// decides whether every site has reached its quorum.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
)

// Participant is one registration. Identities are opaque and are not
// deduplicated: registering the same identity twice at a site counts twice.
type Participant struct {
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
	Site     string `json:"site"`
}

// Config configures a Registry.
type Config struct {
	Log     log.Logger
	Metrics *Metrics
}

// Registry holds the roster of every site that has at least one
// registration. Sites are created by their first registration and are never
// removed.
//
// Each roster has its own lock, so registrations at different sites do not
// contend once both sites exist.
type Registry struct {
	log     log.Logger
	metrics *Metrics

	mu    sync.RWMutex
	sites map[string]*roster
	// order is the order in which sites first registered, for display.
	order []string
}

type roster struct {
	mu           sync.Mutex
	participants []Participant
}

// New returns an empty Registry.
func New(config Config) *Registry {
	logger := config.Log
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Registry{
		log:     logger,
		metrics: config.Metrics,
		sites:   make(map[string]*roster),
	}
}

// Register appends a participant to [site]'s roster. An invalid role is
// rejected with ErrInvalidRole and leaves the registry unchanged.
func (r *Registry) Register(identity string, role Role, site string) error {
	if !role.Valid() {
		r.metrics.reject()
		r.log.Warn("rejected registration",
			log.String("identity", identity),
			log.Stringer("role", role),
			log.String("site", site),
		)
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	ros := r.roster(site)
	ros.mu.Lock()
	ros.participants = append(ros.participants, Participant{
		Identity: identity,
		Role:     role,
		Site:     site,
	})
	count := len(ros.participants)
	ros.mu.Unlock()

	r.metrics.register(role)
	r.log.Debug("registered participant",
		log.String("identity", identity),
		log.Stringer("role", role),
		log.String("site", site),
		log.Int("count", count),
	)
	return nil
}

// RegisterName is Register for a role given by name.
func (r *Registry) RegisterName(identity, roleName, site string) error {
	role, err := ParseRole(roleName)
	if err != nil {
		r.metrics.reject()
		r.log.Warn("rejected registration",
			log.String("identity", identity),
			log.String("role", roleName),
			log.String("site", site),
		)
		return err
	}
	return r.Register(identity, role, site)
}

// roster returns the roster of [site], creating it if needed.
func (r *Registry) roster(site string) *roster {
	r.mu.RLock()
	ros, ok := r.sites[site]
	r.mu.RUnlock()
	if ok {
		return ros
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ros, ok := r.sites[site]; ok {
		return ros
	}
	ros = &roster{}
	r.sites[site] = ros
	r.order = append(r.order, site)
	r.metrics.setSites(len(r.sites))
	return ros
}

// QuorumMet reports whether every site with at least one registration has at
// least [threshold] participants. With no sites it is trivially true; callers
// that need at least one site must check Sites themselves.
func (r *Registry) QuorumMet(threshold int) bool {
	return len(r.Shortfall(threshold)) == 0
}

// Shortfall returns, for each site below [threshold], how many more
// participants it needs. Sites at or above the threshold are omitted.
func (r *Registry) Shortfall(threshold int) map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	short := make(map[string]int)
	for name, ros := range r.sites {
		ros.mu.Lock()
		n := len(ros.participants)
		ros.mu.Unlock()
		if n < threshold {
			short[name] = threshold - n
		}
	}
	return short
}

// Sites returns the names of every site with at least one registration.
func (r *Registry) Sites() set.Set[string] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := set.NewSet[string](len(r.sites))
	for name := range r.sites {
		s.Add(name)
	}
	return s
}

// SiteNames returns site names in the order they first registered.
func (r *Registry) SiteNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Count returns the number of registrations at [site].
func (r *Registry) Count(site string) int {
	r.mu.RLock()
	ros, ok := r.sites[site]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	ros.mu.Lock()
	defer ros.mu.Unlock()
	return len(ros.participants)
}

// Participants returns a copy of [site]'s roster in registration order.
func (r *Registry) Participants(site string) []Participant {
	r.mu.RLock()
	ros, ok := r.sites[site]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	ros.mu.Lock()
	defer ros.mu.Unlock()
	return slices.Clone(ros.participants)
}
