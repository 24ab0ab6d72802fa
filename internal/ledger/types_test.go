package ledger

import (
	"errors"
	"testing"
)

func TestCanonicalType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TRUST_ALLOCATE", "TRUST_ALLOCATE"},
		{"trust_allocate", "TRUST_ALLOCATE"},
		{"trust-allocate", "TRUST_ALLOCATE"},
		{"Trust Allocate", "TRUST_ALLOCATE"},
		{"  recognition_mint ", "RECOGNITION_MINT"},
	}
	for _, c := range cases {
		if got := CanonicalType(c.in); got != c.want {
			t.Errorf("CanonicalType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		typ  string
		want SignalClass
	}{
		{TypeTrustAllocate, ClassTrust},
		{TypeTrustRevoke, ClassTrust},
		{TypeTrustDecline, ClassTrust},
		{TypeRecognitionMint, ClassRecognition},
		{TypeContactBondConfirmed, ClassContact},
		{TypeProfileUpdated, ClassProfile},
		{TypeVolunteerSaved, ClassSystem},
		{"SOMETHING_NEW", ClassSystem},
	}
	for _, c := range cases {
		if got := ClassOf(c.typ); got != c.want {
			t.Errorf("ClassOf(%q) = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestParseConsensusTimestamp(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"123.000000456", 123_000_000_456, false},
		{"123.4", 123_400_000_000, false}, // short nanos are right-padded
		{"123", 123_000_000_000, false},
		{"0.000000001", 1, false},
		{"not-a-number", 0, true},
		{"1.1234567890", 0, true}, // more than nine nano digits
	}
	for _, c := range cases {
		got, err := ParseConsensusTimestamp(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseConsensusTimestamp(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseConsensusTimestamp(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseConsensusTimestamp(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatConsensusTimestamp_RoundTrip(t *testing.T) {
	for _, ns := range []int64{0, 1, 123_000_000_456, 1_700_000_000_999_999_999} {
		s := FormatConsensusTimestamp(ns)
		back, err := ParseConsensusTimestamp(s)
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", ns, err)
		}
		if back != ns {
			t.Errorf("round trip of %d produced %d (via %q)", ns, back, s)
		}
	}
}

func TestWeight_Defaults(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"absent", nil, 1},
		{"float", map[string]any{"weight": float64(5)}, 5},
		{"int", map[string]any{"weight": 3}, 3},
		{"string", map[string]any{"weight": "7"}, 7},
		{"garbage", map[string]any{"weight": []any{}}, 1},
	}
	for _, c := range cases {
		e := SignalEvent{Payload: c.payload}
		if got := e.Weight(); got != c.want {
			t.Errorf("%s: Weight() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestErrorCodes(t *testing.T) {
	transport := NewTransportError("0.0.1001", TypeTrustAllocate, errors.New("connection refused"))
	if !IsTransport(transport) {
		t.Error("IsTransport(transport error) = false")
	}
	if IsTimeout(transport) {
		t.Error("IsTimeout(transport error) = true")
	}

	res := NewResolutionError("did:hedera:abc", errors.New("404"))
	if !IsResolutionFailed(res) {
		t.Error("IsResolutionFailed(resolution error) = false")
	}

	// Wrapped errors must still match via errors.As.
	wrapped := errors.Join(errors.New("outer"), NewTimeoutError("0.0.1001", TypeTrustAllocate, nil))
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout(wrapped timeout) = false")
	}

	if IsParse(errors.New("plain")) {
		t.Error("IsParse(plain error) = true")
	}
}

func TestCanonicalID(t *testing.T) {
	if got := CanonicalID("  0.0.12345 "); got != "0.0.12345" {
		t.Errorf("CanonicalID trimmed = %q", got)
	}
	// NFD input (e + combining acute) must normalize to the NFC form.
	if got := CanonicalID("did:hedera:caf\u0065\u0301"); got != "did:hedera:caf\u00e9" {
		t.Errorf("CanonicalID NFC = %q", got)
	}
}
