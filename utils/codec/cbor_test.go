// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalDeterministicMapOrder(t *testing.T) {
	require := require.New(t)

	a := map[string]int{"00": 512, "11": 500, "01": 6, "10": 6}
	b := map[string]int{"10": 6, "01": 6, "11": 500, "00": 512}

	encA, err := Marshal(a)
	require.NoError(err)
	for range 8 {
		encB, err := Marshal(b)
		require.NoError(err)
		require.Equal(encA, encB)
	}

	var decoded map[string]int
	require.NoError(Unmarshal(encA, &decoded))
	require.Equal(a, decoded)
}
