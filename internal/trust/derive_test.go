package trust

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "trust.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insert(t *testing.T, s *store.Store, seq int64, typ, from, to string, weight int, ts int64) ledger.SignalEvent {
	t.Helper()
	ev := ledger.SignalEvent{
		ID:      ledger.EventID("0.0.1001", seq),
		Type:    typ,
		Class:   ledger.ClassOf(typ),
		Actors:  ledger.Actors{From: from, To: to},
		Payload: map[string]any{"weight": weight},
		TS:      ts,
		Provenance: ledger.Provenance{
			Topic:              "0.0.1001",
			SequenceNumber:     seq,
			ConsensusTimestamp: ledger.FormatConsensusTimestamp(ts),
		},
	}
	accepted, err := s.InsertSignal(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, accepted)
	return ev
}

func TestDerive_EmptyStore(t *testing.T) {
	e := NewEngine(openStore(t))

	state, err := e.Derive(context.Background(), "0.0.100")
	require.NoError(t, err)

	assert.Equal(t, 0, state.OutboundUsed)
	assert.Equal(t, CircleSize, state.OutboundAvailable)
	assert.Empty(t, state.InboundTop9)
	assert.Empty(t, state.LastConsensusISO)
}

func TestDerive_TwoAllocationsScenario(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	ab := insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 3, 10)
	ac := insert(t, s, 2, ledger.TypeTrustAllocate, "A", "C", 7, 20)

	forA, err := e.Derive(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, forA.OutboundUsed)
	assert.Equal(t, 7, forA.OutboundAvailable)

	forB, err := e.Derive(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{ab.ID}, forB.InboundTop9)

	forC, err := e.Derive(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{ac.ID}, forC.InboundTop9)
}

func TestDerive_BoundedCircle(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	// 12 distinct active allocations to 12 distinct counterparts.
	for i := int64(1); i <= 12; i++ {
		insert(t, s, i, ledger.TypeTrustAllocate, "A", fmt.Sprintf("peer-%02d", i), 1, i*10)
	}

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, CircleSize, state.OutboundUsed, "used capped at 9")
	assert.Equal(t, 0, state.OutboundAvailable, "available never negative")
}

func TestDerive_RevokeFreesSlot(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 1, 10)
	insert(t, s, 2, ledger.TypeTrustAllocate, "A", "C", 1, 20)
	insert(t, s, 3, ledger.TypeTrustRevoke, "A", "B", 1, 30)

	state, err := e.Derive(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, state.OutboundUsed, "revoked edge must free its slot (net state, not raw count)")

	// Re-allocating the revoked edge re-occupies exactly one slot.
	insert(t, s, 4, ledger.TypeTrustAllocate, "A", "B", 1, 40)
	state, err = e.Derive(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, state.OutboundUsed)
}

func TestDerive_DeclineIsTerminal(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 1, 10)
	insert(t, s, 2, ledger.TypeTrustDecline, "A", "B", 1, 20)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 0, state.OutboundUsed)
	assert.Equal(t, CircleSize, state.OutboundAvailable)
}

func TestDerive_EdgeTieOnTimestampUsesID(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	// Same edge, same consensus instant: the higher id wins the edge.
	// Sequence 2 (revoke) sorts after sequence 1 byte-wise.
	insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 1, 10)
	insert(t, s, 2, ledger.TypeTrustRevoke, "A", "B", 1, 10)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 0, state.OutboundUsed)
}

func TestDerive_InboundRanking(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	low := insert(t, s, 1, ledger.TypeTrustAllocate, "B", "A", 2, 100)
	heavy := insert(t, s, 2, ledger.TypeTrustAllocate, "C", "A", 9, 50)
	recent := insert(t, s, 3, ledger.TypeTrustAllocate, "D", "A", 2, 200)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	// weight desc first, then ts desc.
	assert.Equal(t, []string{heavy.ID, recent.ID, low.ID}, state.InboundTop9)
}

func TestDerive_DeterministicTieBreakByID(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	// E1 id "...-1" ("a" side), E2 id "...-2" ("b" side): equal weight and
	// ts, so the higher id must rank first regardless of call order.
	e1 := insert(t, s, 1, ledger.TypeTrustAllocate, "B", "A", 5, 100)
	e2 := insert(t, s, 2, ledger.TypeTrustAllocate, "C", "A", 5, 100)

	for i := 0; i < 3; i++ {
		state, err := e.Derive(context.Background(), "A")
		require.NoError(t, err)
		require.Equal(t, []string{e2.ID, e1.ID}, state.InboundTop9, "call %d", i)
	}
}

func TestDerive_InboundCapAndTerminalFilter(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	for i := int64(1); i <= 11; i++ {
		insert(t, s, i, ledger.TypeTrustAllocate, fmt.Sprintf("peer-%02d", i), "A", int(i), i*10)
	}
	// Terminal events never appear in the inbound ranking.
	insert(t, s, 12, ledger.TypeTrustRevoke, "peer-12", "A", 99, 500)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, state.InboundTop9, CircleSize)
	// Heaviest first: weights 11..3 survive the cap.
	assert.Equal(t, ledger.EventID("0.0.1001", 11), state.InboundTop9[0])
}

func TestDerive_DefaultWeight(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	// No weight in payload defaults to 1.
	noWeight := ledger.SignalEvent{
		ID:     ledger.EventID("0.0.1001", 1),
		Type:   ledger.TypeTrustAllocate,
		Class:  ledger.ClassTrust,
		Actors: ledger.Actors{From: "B", To: "A"},
		TS:     100,
		Provenance: ledger.Provenance{
			Topic: "0.0.1001", SequenceNumber: 1,
			ConsensusTimestamp: ledger.FormatConsensusTimestamp(100),
		},
	}
	_, err := s.InsertSignal(ctx, noWeight)
	require.NoError(t, err)
	weighted := insert(t, s, 2, ledger.TypeTrustAllocate, "C", "A", 2, 50)

	state, err := e.Derive(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{weighted.ID, noWeight.ID}, state.InboundTop9)
}

func TestDerive_ReferentialTransparency(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 3, 10)
	insert(t, s, 2, ledger.TypeTrustAllocate, "C", "A", 7, 20)

	first, err := e.Derive(ctx, "A")
	require.NoError(t, err)
	second, err := e.Derive(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged store must yield identical projections")
}

func TestDerive_LastConsensusISO(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	insert(t, s, 1, ledger.TypeTrustAllocate, "A", "B", 1, 1_700_000_000_000_000_000)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, ledger.ToISO(1_700_000_000_000_000_000), state.LastConsensusISO)
}

func TestDerive_RecognitionClassExcluded(t *testing.T) {
	s := openStore(t)
	e := NewEngine(s)

	insert(t, s, 1, ledger.TypeRecognitionMint, "B", "A", 5, 10)

	state, err := e.Derive(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, state.InboundTop9, "recognition signals must not enter the trust projection")
	assert.Empty(t, state.LastConsensusISO)
}
