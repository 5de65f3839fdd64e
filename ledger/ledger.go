// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is an append-only, in-memory log of credit mints and
// transfers.
//
// The ledger is a log, not an accounting system: transfers are never checked
// against balances and entries are never changed or removed. Appends are
// serialized, so entry order is chronological order.
package ledger

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/luxfi/resonance/utils/codec"
)

const (
	// DefaultPrefix prefixes every CreditID.
	DefaultPrefix = "HEAL"

	// creditIDHexLen is the number of digest characters kept in a CreditID.
	creditIDHexLen = 8

	treeDegree = 16
)

// Clock is the time source for timestamps and credit IDs.
type Clock interface {
	Time() time.Time
}

// Backend persists entries as they are appended. database.Database
// satisfies it.
type Backend interface {
	Put(key, value []byte) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithBackend writes every entry to [b] before it is appended.
func WithBackend(b Backend) Option {
	return func(l *Ledger) {
		l.backend = b
	}
}

// WithPrefix sets the CreditID prefix.
func WithPrefix(prefix string) Option {
	return func(l *Ledger) {
		l.prefix = prefix
	}
}

func WithLogger(logger log.Logger) Option {
	return func(l *Ledger) {
		l.log = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// Ledger records mints and transfers. It is safe for concurrent use.
type Ledger struct {
	clock   Clock
	backend Backend
	prefix  string
	log     log.Logger
	metrics *Metrics

	mu      sync.RWMutex
	entries *btree.BTreeG[Entry]
	nextSeq uint64
	// lastSample is the most recent clock sample used; samples strictly
	// increase so that no two credit IDs derive from the same instant.
	lastSample time.Time
	supply     uint64
	reserve    float64
}

// New returns an empty ledger.
func New(clock Clock, opts ...Option) *Ledger {
	l := &Ledger{
		clock:   clock,
		prefix:  DefaultPrefix,
		log:     log.NewNoOpLogger(),
		entries: btree.NewG(treeDegree, lessSeq),
		nextSeq: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open rebuilds a ledger from the entries persisted in [db] and keeps
// appending to it.
func Open(ctx context.Context, db database.Database, clock Clock, opts ...Option) (*Ledger, error) {
	l := New(clock, append(opts, WithBackend(db))...)

	it := db.NewIteratorWithPrefix(entryPrefix)
	defer it.Release()

	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := parseEntry(it.Key(), it.Value())
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger entry: %w", err)
		}
		l.apply(e)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	l.log.Info("opened ledger",
		log.Int("entries", l.entries.Len()),
		log.Uint64("supply", l.supply),
	)
	return l, nil
}

// Mint appends a mint of [amount] and returns the new credit's ID. It only
// fails if the backend rejects the write, in which case nothing is appended.
func (l *Ledger) Mint(amount float64) (CreditID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sample := l.sample()
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(sample.UnixNano()))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(amount))
	digest := hex.EncodeToString(hash.ComputeHash256(buf[:]))
	id := CreditID(l.prefix + "-" + digest[:creditIDHexLen])

	e := Entry{
		Seq:       l.nextSeq,
		Kind:      KindMint,
		CreditID:  id,
		Amount:    amount,
		Timestamp: sample,
	}
	if err := l.append(e); err != nil {
		return "", err
	}

	l.log.Info("minted credit",
		log.String("creditID", string(id)),
		log.Stringer("amount", amountStringer(amount)),
		log.Stringer("reserve", amountStringer(l.reserve)),
	)
	return id, nil
}

// Transfer appends a transfer of credit [id] from [from] to [to]. Neither
// party nor the credit is validated.
func (l *Ledger) Transfer(from, to string, id CreditID) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sample := l.sample()
	e := Entry{
		Seq:       l.nextSeq,
		Kind:      KindTransfer,
		CreditID:  id,
		From:      from,
		To:        to,
		Timestamp: sample,
	}
	b, err := codec.Marshal(e)
	if err != nil {
		return Entry{}, err
	}
	e.Fingerprint = hex.EncodeToString(hash.ComputeHash256(b))

	if err := l.append(e); err != nil {
		return Entry{}, err
	}

	l.log.Debug("transferred credit",
		log.String("creditID", string(id)),
		log.String("from", from),
		log.String("to", to),
	)
	return e, nil
}

// sample returns a clock reading strictly after the previous one.
func (l *Ledger) sample() time.Time {
	now := l.clock.Time().UTC()
	if !now.After(l.lastSample) {
		now = l.lastSample.Add(time.Nanosecond)
	}
	l.lastSample = now
	return now
}

// append persists [e] and then adds it to memory. l.mu must be held.
func (l *Ledger) append(e Entry) error {
	if l.backend != nil {
		b, err := codec.Marshal(e)
		if err != nil {
			return err
		}
		if err := l.backend.Put(entryKey(e.Seq), b); err != nil {
			return fmt.Errorf("failed to persist ledger entry %d: %w", e.Seq, err)
		}
	}
	l.apply(e)
	l.metrics.observe(e, l.supply, l.reserve)
	return nil
}

// apply adds a persisted entry to memory. l.mu must be held, or the ledger
// must not be shared yet.
func (l *Ledger) apply(e Entry) {
	l.entries.ReplaceOrInsert(e)
	if e.Seq >= l.nextSeq {
		l.nextSeq = e.Seq + 1
	}
	if e.Timestamp.After(l.lastSample) {
		l.lastSample = e.Timestamp
	}
	if e.Kind == KindMint {
		l.supply++
		l.reserve += e.Amount
	}
}

// Entries returns every entry in append order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, l.entries.Len())
	l.entries.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// EntriesSince returns the entries with sequence numbers of at least [seq].
func (l *Ledger) EntriesSince(seq uint64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	l.entries.AscendGreaterOrEqual(Entry{Seq: seq}, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.entries.Len()
}

// Supply returns the number of credits minted.
func (l *Ledger) Supply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.supply
}

// Reserve returns the total amount minted.
func (l *Ledger) Reserve() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.reserve
}

// Export writes every entry to [w] as a JSON array.
func (l *Ledger) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Entries())
}

type amountStringer float64

func (a amountStringer) String() string {
	return fmt.Sprintf("%.1fW", float64(a))
}
