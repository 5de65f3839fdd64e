// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mockable provides a wall clock that tests can pin and step.
package mockable

import (
	"sync"
	"time"
)

// Clock reads global time unless it has been pinned with Set. Once pinned,
// Advance moves the pinned time forward. It is safe for concurrent use.
//
// The zero value reads global time.
type Clock struct {
	mu    sync.RWMutex
	faked bool
	time  time.Time
}

// NewFake returns a clock pinned at [t].
func NewFake(t time.Time) *Clock {
	c := &Clock{}
	c.Set(t)
	return c
}

// Set pins the clock at [t].
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faked = true
	c.time = t
}

// Advance moves a pinned clock forward by [d]. On an unpinned clock it pins
// the clock at now+d.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.faked {
		c.faked = true
		c.time = time.Now()
	}
	c.time = c.time.Add(d)
	return c.time
}

// Sync unpins the clock so it follows global time again.
func (c *Clock) Sync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faked = false
}

// Time returns the time on this clock
func (c *Clock) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.faked {
		return c.time
	}
	return time.Now()
}

// Unix returns the unix timestamp on this clock.
func (c *Clock) Unix() uint64 {
	unix := max(c.Time().Unix(), 0)
	return uint64(unix)
}
