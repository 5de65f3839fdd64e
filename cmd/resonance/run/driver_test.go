// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/config"
	"github.com/luxfi/resonance/ledger"
	"github.com/luxfi/resonance/registry"
	"github.com/luxfi/resonance/scheduler"
	"github.com/luxfi/resonance/utils/compression"
	"github.com/luxfi/resonance/utils/timer/mockable"
)

func newTestEngine(t *testing.T) *resonance.Engine {
	t.Helper()
	c := config.DefaultConfig()
	c.TrialsPerPair = 64
	f := &resonance.Factory{
		Config: c,
		Clock:  mockable.NewFake(c.EventTime),
	}
	e, err := f.New(log.NewNoOpLogger())
	require.NoError(t, err)
	return e
}

func TestIdentity(t *testing.T) {
	require := require.New(t)

	require.Equal("sound_healer_Ulur_001", Identity(registry.SoundHealer, "Uluru", 1))
	require.Equal("trauma_therapist_Grea_036", Identity(registry.TraumaTherapist, "Great Pyramid", 36))
	require.Equal("quantum_physicist_Io_010", Identity(registry.QuantumPhysicist, "Io", 10))
}

func TestDrive(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t)
	prep, err := Drive(context.Background(), log.NewNoOpLogger(), e, defaultPerRole, false)
	require.NoError(err)
	require.Equal(scheduler.StatusPrepared, prep.Status)
	require.Len(prep.Pairs, 6)
	for _, site := range e.Config.SiteNames() {
		require.Equal(144, e.Registry.Count(site))
	}
	require.Equal(5, e.Ledger.Len())
}

func TestDriveBelowQuorum(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t)
	prep, err := Drive(context.Background(), log.NewNoOpLogger(), e, 35, true)
	require.NoError(err)
	require.Equal(scheduler.StatusUnmet, prep.Status)
	require.Len(prep.Shortfall, 4)
	require.Equal(4, prep.Shortfall["Uluru"])
	require.Zero(e.Ledger.Len())
}

func TestExport(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t)
	_, err := Drive(context.Background(), log.NewNoOpLogger(), e, defaultPerRole, false)
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "ledger.json.zst")
	require.NoError(Export(e, path))

	compressed, err := os.ReadFile(path)
	require.NoError(err)
	c, err := compression.NewZstdCompressor(maxExportSize)
	require.NoError(err)
	decompressed, err := c.Decompress(compressed)
	require.NoError(err)

	var entries []ledger.Entry
	require.NoError(json.NewDecoder(bytes.NewReader(decompressed)).Decode(&entries))
	require.Len(entries, 5)
	require.Equal(ledger.KindMint, entries[0].Kind)
	require.Equal("Sedona Vortex", entries[4].To)
}

func TestParseFlags(t *testing.T) {
	require := require.New(t)

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	AddFlags(fs)
	c, err := ParseFlags(fs, []string{"--per-role=2", "--capture", "--export=out.zst", "--seed=9"})
	require.NoError(err)
	require.Equal(2, c.PerRole)
	require.True(c.Capture)
	require.Equal("out.zst", c.Export)
	require.Equal(uint64(9), c.Seed)
}
