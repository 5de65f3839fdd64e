// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coherence

import (
	"encoding/hex"

	"github.com/luxfi/crypto/hash"

	"github.com/luxfi/resonance/utils/codec"
)

// FingerprintLen is the length of a fingerprint in hex characters.
const FingerprintLen = 64

// Counts maps an outcome label to how many trials observed it. Outcomes that
// were never observed are absent.
type Counts map[string]int

// Total returns the number of trials counted.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Fingerprint digests the canonical encoding of [counts]. Equal counts always
// produce equal fingerprints, regardless of the inputs that were sampled.
func Fingerprint(counts Counts) string {
	b, err := codec.Marshal(map[string]int(counts))
	if err != nil {
		// A map of strings to ints always encodes.
		panic(err)
	}
	return hex.EncodeToString(hash.ComputeHash256(b))
}
