package recognition

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/store"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	backend, err := store.Open(filepath.Join(t.TempDir(), "recognition.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	return NewStore(backend, opts...)
}

func TestAdd_FillsIDAndTimestamp(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	s := newTestStore(t,
		WithIDGenerator(NewFixedGenerator("rec-1")),
		WithNow(func() time.Time { return fixed }),
	)

	sig, err := s.Add(context.Background(), ledger.RecognitionSignal{
		Label: "Truth",
		Emoji: "💎",
		From:  "0.0.100",
		To:    "0.0.200",
	})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if sig.ID != "rec-1" {
		t.Errorf("ID = %q", sig.ID)
	}
	if sig.Timestamp != fixed.UnixNano() {
		t.Errorf("Timestamp = %d", sig.Timestamp)
	}
}

func TestAdd_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, ledger.RecognitionSignal{From: "a", To: "b"}); err == nil {
		t.Error("missing label accepted")
	}
	if _, err := s.Add(ctx, ledger.RecognitionSignal{Label: "Truth", From: "a"}); err == nil {
		t.Error("missing recipient accepted")
	}
}

func TestListForUser_MostRecentFirst(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedGenerator("rec-1", "rec-2")))
	ctx := context.Background()

	for _, label := range []string{"Truth", "Grit"} {
		if _, err := s.Add(ctx, ledger.RecognitionSignal{
			Label: label, Emoji: "🔥", From: "0.0.100", To: "0.0.200",
		}); err != nil {
			t.Fatalf("Add(%s) failed: %v", label, err)
		}
	}

	got, err := s.ListForUser(ctx, "0.0.200")
	if err != nil {
		t.Fatalf("ListForUser() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d signals, want 2", len(got))
	}
	if got[0].Label != "Grit" || got[1].Label != "Truth" {
		t.Errorf("order = [%s %s], want most recent first", got[0].Label, got[1].Label)
	}
}

// lensCatalog mimics the application-level lens configuration that picks
// labels and emoji at mint time.
type lensCatalog map[string]struct {
	Label string
	Emoji string
}

func TestAdd_LensConfigChangeDoesNotRewriteHistory(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedGenerator("rec-1")))
	ctx := context.Background()

	catalog := lensCatalog{
		"truth": {Label: "Truth", Emoji: "💎"},
	}

	lens := catalog["truth"]
	if _, err := s.Add(ctx, ledger.RecognitionSignal{
		Label: lens.Label,
		Emoji: lens.Emoji,
		Lens:  "truth",
		From:  "0.0.X",
		To:    "0.0.Y",
	}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	// The global lens configuration changes after the mint.
	catalog["truth"] = struct {
		Label string
		Emoji string
	}{Label: "Honesty", Emoji: "🪞"}

	got, err := s.ListForUser(ctx, "0.0.Y")
	if err != nil {
		t.Fatalf("ListForUser() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	if got[0].Label != "Truth" || got[0].Emoji != "💎" {
		t.Errorf("stored signal = {%s %s}, presentation fields must stay frozen at mint",
			got[0].Label, got[0].Emoji)
	}
}

func TestAdd_RemintSameIDIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := ledger.RecognitionSignal{
		ID: "rec-dup", Label: "Truth", Emoji: "💎", From: "a", To: "b", Timestamp: 10,
	}
	if _, err := s.Add(ctx, first); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	// Same id, different body: the stored row must not change.
	second := first
	second.Label = "Altered"
	if _, err := s.Add(ctx, second); err != nil {
		t.Fatalf("re-Add() failed: %v", err)
	}

	got, err := s.ListForUser(ctx, "b")
	if err != nil {
		t.Fatalf("ListForUser() failed: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Truth" {
		t.Errorf("got = %+v, want single frozen row", got)
	}
}
