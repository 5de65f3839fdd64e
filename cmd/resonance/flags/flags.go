// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package flags maps command line flags onto the engine configuration.
package flags

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/luxfi/resonance/config"
)

const (
	ConfigFileKey       = "config"
	QuorumThresholdKey  = "quorum-threshold"
	TrialsPerPairKey    = "trials-per-pair"
	SeedKey             = "seed"
	MintAmountKey       = "mint-amount"
	OriginatorKey       = "originator"
	CreditPrefixKey     = "credit-prefix"
	EventTimeKey        = "event-time"
	PrepareTimeoutKey   = "prepare-timeout"
	MaxParallelPairsKey = "max-parallel-pairs"
	HistorySizeKey      = "history-size"
	HTTPHostKey         = "http-host"
	HTTPPortKey         = "http-port"
)

// AddFlags registers every configuration flag, defaulting to
// config.DefaultConfig.
func AddFlags(flags *pflag.FlagSet) {
	d := config.DefaultConfig()
	flags.String(ConfigFileKey, "", "YAML config file; flags override its values")
	flags.Int(QuorumThresholdKey, d.QuorumThreshold, "Participants every registered site needs")
	flags.Int(TrialsPerPairKey, d.TrialsPerPair, "Samples per coherence estimate")
	flags.Uint64(SeedKey, d.Seed, "Seed of the coherence estimator")
	flags.Float64(MintAmountKey, d.MintAmount, "Amount minted per preparation")
	flags.String(OriginatorKey, d.Originator, "Source of every credit transfer")
	flags.String(CreditPrefixKey, d.CreditPrefix, "Prefix of minted credit IDs")
	flags.String(EventTimeKey, d.EventTime.Format(time.RFC3339), "Target time of the activation (RFC 3339)")
	flags.Duration(PrepareTimeoutKey, d.PrepareTimeout, "Deadline of one preparation; 0 disables it")
	flags.Int(MaxParallelPairsKey, d.MaxParallelPairs, "Site pairs estimated concurrently")
	flags.Int(HistorySizeKey, d.HistorySize, "Preparations kept for lookup")
	flags.String(HTTPHostKey, d.HTTP.Host, "API listen host")
	flags.Uint16(HTTPPortKey, d.HTTP.Port, "API listen port")
}

// ParseFlags parses [args] and returns the resulting configuration: the
// defaults, then the config file if one is given, then every flag set
// explicitly.
func ParseFlags(flags *pflag.FlagSet, args []string) (config.Config, error) {
	if err := flags.Parse(args); err != nil {
		return config.Config{}, err
	}

	c := config.DefaultConfig()
	path, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	var errs []error
	set := func(key string, apply func() error) {
		if flags.Changed(key) {
			errs = append(errs, apply())
		}
	}
	set(QuorumThresholdKey, func() (err error) {
		c.QuorumThreshold, err = flags.GetInt(QuorumThresholdKey)
		return err
	})
	set(TrialsPerPairKey, func() (err error) {
		c.TrialsPerPair, err = flags.GetInt(TrialsPerPairKey)
		return err
	})
	set(SeedKey, func() (err error) {
		c.Seed, err = flags.GetUint64(SeedKey)
		return err
	})
	set(MintAmountKey, func() (err error) {
		c.MintAmount, err = flags.GetFloat64(MintAmountKey)
		return err
	})
	set(OriginatorKey, func() (err error) {
		c.Originator, err = flags.GetString(OriginatorKey)
		return err
	})
	set(CreditPrefixKey, func() (err error) {
		c.CreditPrefix, err = flags.GetString(CreditPrefixKey)
		return err
	})
	set(EventTimeKey, func() error {
		s, err := flags.GetString(EventTimeKey)
		if err != nil {
			return err
		}
		c.EventTime, err = time.Parse(time.RFC3339, s)
		return err
	})
	set(PrepareTimeoutKey, func() (err error) {
		c.PrepareTimeout, err = flags.GetDuration(PrepareTimeoutKey)
		return err
	})
	set(MaxParallelPairsKey, func() (err error) {
		c.MaxParallelPairs, err = flags.GetInt(MaxParallelPairsKey)
		return err
	})
	set(HistorySizeKey, func() (err error) {
		c.HistorySize, err = flags.GetInt(HistorySizeKey)
		return err
	})
	set(HTTPHostKey, func() (err error) {
		c.HTTP.Host, err = flags.GetString(HTTPHostKey)
		return err
	})
	set(HTTPPortKey, func() (err error) {
		c.HTTP.Port, err = flags.GetUint16(HTTPPortKey)
		return err
	})
	for _, err := range errs {
		if err != nil {
			return config.Config{}, err
		}
	}
	return c, c.Validate()
}
