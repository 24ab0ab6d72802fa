package store

import (
	"path/filepath"
	"testing"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// openTestStore creates a fresh store in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// trustSignal builds a trust-class event with deterministic provenance.
func trustSignal(topic string, seq int64, typ, from, to string, weight int, ts int64) ledger.SignalEvent {
	return ledger.SignalEvent{
		ID:     ledger.EventID(topic, seq),
		Type:   typ,
		Class:  ledger.ClassOf(typ),
		Actors: ledger.Actors{From: from, To: to},
		Payload: map[string]any{
			"weight": weight,
		},
		TS: ts,
		Provenance: ledger.Provenance{
			Topic:              topic,
			SequenceNumber:     seq,
			ConsensusTimestamp: ledger.FormatConsensusTimestamp(ts),
		},
	}
}
