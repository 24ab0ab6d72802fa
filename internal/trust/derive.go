// Package trust computes the bounded trust-circle projection.
//
// The projection is a pure function of store contents and the requesting
// participant: no event is mutated, nothing is cached, and repeated calls
// over an unchanged store return identical results.
package trust

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/store"
)

// CircleSize caps both directions of the trust circle.
const CircleSize = 9

// SignalReader is the slice of the store the engine reads.
type SignalReader interface {
	SignalsByActor(ctx context.Context, participant string, role store.ActorRole) ([]ledger.SignalEvent, error)
}

// Engine derives trust circles on demand.
type Engine struct {
	signals SignalReader
}

// NewEngine creates a derivation engine over the given store slice.
func NewEngine(signals SignalReader) *Engine {
	return &Engine{signals: signals}
}

// Derive computes the trust circle for one participant.
//
// Outbound slots reflect net relationship state, not a raw tally: per
// (from, to) edge the latest trust event by (ts, id) order wins, and the
// edge occupies a slot only while that latest event is non-terminal. A
// revoked or declined edge frees its slot immediately.
//
// Inbound ranking is fully deterministic: weight descending (default 1),
// then ts descending, then id descending byte-wise to break residual ties.
func (e *Engine) Derive(ctx context.Context, participant string) (ledger.TrustCircleState, error) {
	participant = ledger.CanonicalID(participant)

	outbound, err := e.signals.SignalsByActor(ctx, participant, store.RoleFrom)
	if err != nil {
		return ledger.TrustCircleState{}, fmt.Errorf("derive outbound: %w", err)
	}
	inbound, err := e.signals.SignalsByActor(ctx, participant, store.RoleTo)
	if err != nil {
		return ledger.TrustCircleState{}, fmt.Errorf("derive inbound: %w", err)
	}

	var lastTS int64

	// Net outbound state: last writer wins per counterpart edge.
	edges := make(map[string]ledger.SignalEvent)
	for _, ev := range outbound {
		if ev.Class != ledger.ClassTrust {
			continue
		}
		if ev.TS > lastTS {
			lastTS = ev.TS
		}
		prev, seen := edges[ev.Actors.To]
		if !seen || laterEvent(ev, prev) {
			edges[ev.Actors.To] = ev
		}
	}
	active := 0
	for _, ev := range edges {
		if !ev.Terminal() {
			active++
		}
	}
	used := active
	if used > CircleSize {
		used = CircleSize
	}

	// Inbound top-9: non-terminal trust events ranked deterministically.
	ranked := make([]ledger.SignalEvent, 0, len(inbound))
	for _, ev := range inbound {
		if ev.Class != ledger.ClassTrust || ev.Terminal() {
			continue
		}
		if ev.TS > lastTS {
			lastTS = ev.TS
		}
		ranked = append(ranked, ev)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Weight() != b.Weight() {
			return a.Weight() > b.Weight()
		}
		if a.TS != b.TS {
			return a.TS > b.TS
		}
		return strings.Compare(a.ID, b.ID) > 0
	})
	if len(ranked) > CircleSize {
		ranked = ranked[:CircleSize]
	}
	top := make([]string, len(ranked))
	for i, ev := range ranked {
		top[i] = ev.ID
	}

	state := ledger.TrustCircleState{
		OutboundUsed:      used,
		OutboundAvailable: CircleSize - used,
		InboundTop9:       top,
	}
	if lastTS > 0 {
		state.LastConsensusISO = ledger.ToISO(lastTS)
	}
	return state, nil
}

// laterEvent reports whether a supersedes b on the same edge.
// Ties on ts fall back to id order so the outcome never depends on
// delivery order.
func laterEvent(a, b ledger.SignalEvent) bool {
	if a.TS != b.TS {
		return a.TS > b.TS
	}
	return strings.Compare(a.ID, b.ID) > 0
}
