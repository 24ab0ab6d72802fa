// Package recognition manages minted recognition signals.
//
// A recognition is frozen at mint time: the presentation fields (label,
// emoji, description, lens) are copied into the row and never touched by
// later lens or label configuration changes. That freeze is a correctness
// invariant of the projection, not a caching shortcut.
package recognition

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// IDGenerator generates unique recognition ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids, so recognition ids
// sort by mint time, which helps debugging and trace inspection.
//
// Panics if UUID generation fails (should never happen in practice).
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests.
type FixedGenerator struct {
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// Panics when exhausted, to fail fast on miscounted test fixtures.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	if g.idx >= len(g.ids) {
		panic("recognition: FixedGenerator exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Appender is the slice of the store recognitions write through.
type Appender interface {
	AppendRecognition(ctx context.Context, sig ledger.RecognitionSignal) error
	RecognitionsForUser(ctx context.Context, accountID string) ([]ledger.RecognitionSignal, error)
}

// Store appends and lists immutable recognition signals.
type Store struct {
	backend Appender
	ids     IDGenerator
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the id generator, for tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a recognition store over the given backend.
func NewStore(backend Appender, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ids:     UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a newly minted recognition and returns it with its id and
// timestamp filled in. Fields are never edited afterward.
func (s *Store) Add(ctx context.Context, sig ledger.RecognitionSignal) (ledger.RecognitionSignal, error) {
	if sig.Label == "" {
		return ledger.RecognitionSignal{}, fmt.Errorf("add recognition: label is required")
	}
	if sig.From == "" || sig.To == "" {
		return ledger.RecognitionSignal{}, fmt.Errorf("add recognition: from and to are required")
	}

	sig.From = ledger.CanonicalID(sig.From)
	sig.To = ledger.CanonicalID(sig.To)
	if sig.ID == "" {
		sig.ID = s.ids.Generate()
	}
	if sig.Timestamp == 0 {
		sig.Timestamp = s.now().UnixNano()
	}

	if err := s.backend.AppendRecognition(ctx, sig); err != nil {
		return ledger.RecognitionSignal{}, err
	}
	return sig, nil
}

// ListForUser returns all recognitions where the account is sender or
// recipient, most recent first.
func (s *Store) ListForUser(ctx context.Context, accountID string) ([]ledger.RecognitionSignal, error) {
	return s.backend.RecognitionsForUser(ctx, accountID)
}
