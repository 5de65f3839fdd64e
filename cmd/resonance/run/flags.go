// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"github.com/spf13/pflag"

	"github.com/luxfi/resonance/cmd/resonance/flags"
	"github.com/luxfi/resonance/config"
)

const (
	PerRoleKey = "per-role"
	CaptureKey = "capture"
	ExportKey  = "export"

	defaultPerRole = 36
)

func AddFlags(fs *pflag.FlagSet) {
	flags.AddFlags(fs)
	fs.Int(PerRoleKey, defaultPerRole, "Participants of each role registered at each site")
	fs.Bool(CaptureKey, false, "Capture a biofield reading from every participant")
	fs.String(ExportKey, "", "Write the zstd-compressed ledger to this file")
}

type Config struct {
	config.Config

	PerRole int
	Capture bool
	Export  string
}

func ParseFlags(fs *pflag.FlagSet, args []string) (*Config, error) {
	c, err := flags.ParseFlags(fs, args)
	if err != nil {
		return nil, err
	}

	perRole, err := fs.GetInt(PerRoleKey)
	if err != nil {
		return nil, err
	}
	capture, err := fs.GetBool(CaptureKey)
	if err != nil {
		return nil, err
	}
	export, err := fs.GetString(ExportKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		Config:  c,
		PerRole: perRole,
		Capture: capture,
		Export:  export,
	}, nil
}
