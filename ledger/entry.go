// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/resonance/utils/codec"
)

var (
	errUnknownKind  = errors.New("unknown entry kind")
	errMalformedKey = errors.New("malformed entry key")
)

// entryPrefix namespaces entries in a backend.
var entryPrefix = []byte("entry/")

// Kind distinguishes mint entries from transfer entries.
type Kind uint8

const (
	KindMint Kind = iota + 1
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindMint:
		return "mint"
	case KindTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindMint, KindTransfer:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownKind, uint8(k))
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "mint":
		*k = KindMint
	case "transfer":
		*k = KindTransfer
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, text)
	}
	return nil
}

// CreditID names a minted credit batch.
type CreditID string

// Entry is one ledger record. Mint entries carry Amount; transfer entries
// carry From, To and Fingerprint. Both carry the credit they refer to.
type Entry struct {
	Seq         uint64    `json:"seq"                   cbor:"1,keyasint"`
	Kind        Kind      `json:"kind"                  cbor:"2,keyasint"`
	CreditID    CreditID  `json:"creditID"              cbor:"3,keyasint"`
	Amount      float64   `json:"amount,omitempty"      cbor:"4,keyasint,omitempty"`
	From        string    `json:"from,omitempty"        cbor:"5,keyasint,omitempty"`
	To          string    `json:"to,omitempty"          cbor:"6,keyasint,omitempty"`
	Timestamp   time.Time `json:"timestamp"             cbor:"7,keyasint"`
	Fingerprint string    `json:"fingerprint,omitempty" cbor:"8,keyasint,omitempty"`
}

func (e Entry) String() string {
	switch e.Kind {
	case KindMint:
		return fmt.Sprintf("#%d mint %s %.1f", e.Seq, e.CreditID, e.Amount)
	default:
		return fmt.Sprintf("#%d %s %s %s -> %s", e.Seq, e.Kind, e.CreditID, e.From, e.To)
	}
}

func lessSeq(a, b Entry) bool {
	return a.Seq < b.Seq
}

func entryKey(seq uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], seq)
	return key
}

func parseEntry(key, value []byte) (Entry, error) {
	if len(key) != len(entryPrefix)+8 {
		return Entry{}, fmt.Errorf("%w: %x", errMalformedKey, key)
	}
	var e Entry
	if err := codec.Unmarshal(value, &e); err != nil {
		return Entry{}, err
	}
	if seq := binary.BigEndian.Uint64(key[len(entryPrefix):]); seq != e.Seq {
		return Entry{}, fmt.Errorf("%w: key seq %d holds entry %d", errMalformedKey, seq, e.Seq)
	}
	return e, nil
}
