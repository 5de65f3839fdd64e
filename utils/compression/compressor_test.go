// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZstdRoundTrip(t *testing.T) {
	require := require.New(t)

	c, err := NewZstdCompressor(1 << 16)
	require.NoError(err)

	msg := bytes.Repeat([]byte("HEAL-0123abcd RESONANCE_CORE Uluru\n"), 64)
	compressed, err := c.Compress(msg)
	require.NoError(err)
	require.Less(len(compressed), len(msg))

	decompressed, err := c.Decompress(compressed)
	require.NoError(err)
	require.Equal(msg, decompressed)
}

func TestZstdLimits(t *testing.T) {
	require := require.New(t)

	_, err := NewZstdCompressor(math.MaxInt64)
	require.ErrorIs(err, ErrInvalidMaxSizeCompressor)
	_, err = NewZstdCompressor(0)
	require.ErrorIs(err, ErrInvalidMaxSizeCompressor)

	c, err := NewZstdCompressor(8)
	require.NoError(err)
	_, err = c.Compress(make([]byte, 9))
	require.ErrorIs(err, ErrMsgTooLarge)
}

func TestZstdDecompressErrors(t *testing.T) {
	require := require.New(t)

	large, err := NewZstdCompressor(1 << 16)
	require.NoError(err)
	compressed, err := large.Compress(bytes.Repeat([]byte{0x90}, 64))
	require.NoError(err)

	small, err := NewZstdCompressor(32)
	require.NoError(err)
	_, err = small.Decompress(compressed)
	require.ErrorIs(err, ErrDecompressedMsgTooLarge)

	_, err = large.Decompress([]byte("not a zstd frame"))
	require.ErrorIs(err, ErrDecompressFailed)
	require.NotErrorIs(err, ErrDecompressedMsgTooLarge)

	truncated := compressed[:len(compressed)/2]
	_, err = large.Decompress(truncated)
	require.ErrorIs(err, ErrDecompressFailed)
}
