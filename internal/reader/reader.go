// Package reader implements the per-source poll cycle: fetch messages
// since the watermark, normalize, insert, advance the cursor.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/mirror"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/normalize"
)

// DefaultMaxPages bounds how many pages one poll cycle may consume.
// A deep backlog is drained across successive scheduled cycles instead of
// stalling a single one.
const DefaultMaxPages = 10

// Source fetches pages of raw messages for a topic.
// Implemented by mirror.Client (production) and test fakes.
type Source interface {
	Messages(ctx context.Context, topic string, afterNS int64, limit int) (mirror.MessagesPage, error)
	NextPage(ctx context.Context, topic, next string) (mirror.MessagesPage, error)
}

// Sink is the slice of the store a reader writes through.
type Sink interface {
	InsertSignal(ctx context.Context, ev ledger.SignalEvent) (bool, error)
	AdvanceWatermark(ctx context.Context, topic, typ string, ts int64) error
	HighWatermark(ctx context.Context, topic, typ string) (ledger.Watermark, error)
}

// Stats summarizes one poll cycle.
type Stats struct {
	Pages         int   `json:"pages"`
	Fetched       int   `json:"fetched"`
	Accepted      int   `json:"accepted"`
	Duplicates    int   `json:"duplicates"`
	ParseFailures int   `json:"parse_failures"`
	Skipped       int   `json:"skipped"` // other-type messages on a filtered reader
	Watermark     int64 `json:"watermark"`
}

// Reader polls one (topic, type) source. Type may be empty to fold every
// message on the topic; a non-empty type only folds matching events and
// leaves the rest for the source that owns them.
//
// A Reader is not safe for concurrent Poll calls; the scheduler enforces
// single-flight per source.
type Reader struct {
	topic    string
	typ      string
	source   Source
	sink     Sink
	pageSize int
	maxPages int
	log      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithPageSize sets the per-request message limit.
func WithPageSize(n int) Option {
	return func(r *Reader) { r.pageSize = n }
}

// WithMaxPages sets the page-count ceiling per poll cycle.
func WithMaxPages(n int) Option {
	return func(r *Reader) { r.maxPages = n }
}

// New creates a reader for one (topic, type) source.
func New(topic, typ string, source Source, sink Sink, log *slog.Logger, opts ...Option) *Reader {
	r := &Reader{
		topic:    topic,
		typ:      ledger.CanonicalType(typ),
		source:   source,
		sink:     sink,
		pageSize: mirror.DefaultPageLimit,
		maxPages: DefaultMaxPages,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Topic returns the topic this reader polls.
func (r *Reader) Topic() string { return r.topic }

// Type returns the canonical type filter, empty for all types.
func (r *Reader) Type() string { return r.typ }

// Poll runs one cycle: page oldest-first from the stored watermark,
// normalize and insert each record, then advance the watermark to the
// maximum consensus timestamp observed across accepted-or-duplicate
// records (never below the prior value).
//
// Failure semantics:
//   - a parse failure drops the record, increments Stats.ParseFailures
//     and continues
//   - a transport failure aborts the remaining pages but first commits
//     the watermark covering everything already safely folded in, so the
//     next cycle resumes without data loss
func (r *Reader) Poll(ctx context.Context) (Stats, error) {
	wm, err := r.sink.HighWatermark(ctx, r.topic, r.typ)
	if err != nil {
		return r.finish(ctx, Stats{}, 0, fmt.Errorf("poll %s/%s: %w", r.topic, r.typ, err))
	}

	stats := Stats{Watermark: wm.TS}
	var maxFolded int64 // highest ts among accepted-or-duplicate records this cycle

	page, err := r.source.Messages(ctx, r.topic, wm.TS, r.pageSize)
	for {
		if err != nil {
			return r.finish(ctx, stats, maxFolded, err)
		}
		stats.Pages++

		for _, raw := range page.Messages {
			ev, nerr := normalize.Event(raw)
			if nerr != nil {
				stats.ParseFailures++
				r.log.Warn("dropping malformed message",
					"topic", r.topic, "seq", raw.SequenceNumber, "err", nerr)
				continue
			}
			if r.typ != "" && ev.Type != r.typ {
				stats.Skipped++
				continue
			}

			accepted, ierr := r.sink.InsertSignal(ctx, ev)
			if ierr != nil {
				return r.finish(ctx, stats, maxFolded, fmt.Errorf("insert %s: %w", ev.ID, ierr))
			}
			if accepted {
				stats.Accepted++
			} else {
				stats.Duplicates++
			}
			if ev.TS > maxFolded {
				maxFolded = ev.TS
			}
			stats.Fetched++
		}

		if !page.HasNext() || stats.Pages >= r.maxPages {
			break
		}
		page, err = r.source.NextPage(ctx, r.topic, page.Links.Next)
	}

	return r.finish(ctx, stats, maxFolded, nil)
}

// finish commits the watermark for everything safely folded this cycle,
// then returns the cycle's outcome. Called on both success and abort so
// committed progress is never repolled wholesale.
func (r *Reader) finish(ctx context.Context, stats Stats, maxFolded int64, pollErr error) (Stats, error) {
	if maxFolded > 0 {
		if err := r.sink.AdvanceWatermark(ctx, r.topic, r.typ, maxFolded); err != nil {
			if pollErr != nil {
				return stats, fmt.Errorf("advance watermark after %v: %w", pollErr, err)
			}
			return stats, fmt.Errorf("advance watermark: %w", err)
		}
		if maxFolded > stats.Watermark {
			stats.Watermark = maxFolded
		}
	}
	if pollErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stats, ledger.NewTimeoutError(r.topic, r.typ, pollErr)
		}
		return stats, pollErr
	}
	return stats, nil
}
