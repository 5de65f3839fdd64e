// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resonance

import (
	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/luxfi/resonance/config"
	"github.com/luxfi/resonance/utils/timer/mockable"
)

// Factory creates engines from a configuration.
type Factory struct {
	config.Config

	// DB persists the ledger. An in-memory database is used if nil.
	DB database.Database

	// Clock stamps ledger entries and readings. The wall clock is used if nil.
	Clock *mockable.Clock
}

// New validates the configuration and returns a new engine.
func (f *Factory) New(logger log.Logger) (*Engine, error) {
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}
	return newEngine(f.Config, f.DB, f.Clock, logger)
}
