// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/resonance/config"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	return fs
}

func TestParseFlagsDefaults(t *testing.T) {
	require := require.New(t)

	c, err := ParseFlags(newFlagSet(), nil)
	require.NoError(err)
	require.Equal(config.DefaultConfig(), c)
}

func TestParseFlagsOverrides(t *testing.T) {
	require := require.New(t)

	c, err := ParseFlags(newFlagSet(), []string{
		"--quorum-threshold=12",
		"--trials-per-pair=64",
		"--seed=7",
		"--mint-amount=1000",
		"--event-time=2026-03-20T14:46:00Z",
		"--prepare-timeout=5s",
		"--http-port=9999",
	})
	require.NoError(err)
	require.Equal(12, c.QuorumThreshold)
	require.Equal(64, c.TrialsPerPair)
	require.Equal(uint64(7), c.Seed)
	require.Equal(1000.0, c.MintAmount)
	require.True(time.Date(2026, time.March, 20, 14, 46, 0, 0, time.UTC).Equal(c.EventTime))
	require.Equal(5*time.Second, c.PrepareTimeout)
	require.Equal(uint16(9999), c.HTTP.Port)
	require.Equal(config.DefaultConfig().Originator, c.Originator)
}

func TestParseFlagsOverrideFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "resonance.yaml")
	require.NoError(os.WriteFile(path, []byte("quorumThreshold: 12\ntrialsPerPair: 64\n"), 0o600))

	c, err := ParseFlags(newFlagSet(), []string{"--config", path, "--trials-per-pair=32"})
	require.NoError(err)
	require.Equal(12, c.QuorumThreshold)
	require.Equal(32, c.TrialsPerPair)
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "invalid threshold",
			args:    []string{"--quorum-threshold=0"},
			wantErr: config.ErrInvalidThreshold,
		},
		{
			name:    "invalid trials",
			args:    []string{"--trials-per-pair=-1"},
			wantErr: config.ErrInvalidTrials,
		},
		{
			name:    "missing config file",
			args:    []string{"--config=/nonexistent/resonance.yaml"},
			wantErr: os.ErrNotExist,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(newFlagSet(), tt.args)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := ParseFlags(newFlagSet(), []string{"--event-time=tomorrow"})
	require.Error(t, err)
}
