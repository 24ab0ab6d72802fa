package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignalClass is the coarse category a signal belongs to.
// Trust and recognition signals feed separate projections and never mix.
type SignalClass string

const (
	ClassTrust       SignalClass = "trust"
	ClassRecognition SignalClass = "recognition"
	ClassContact     SignalClass = "contact"
	ClassProfile     SignalClass = "profile"
	ClassSystem      SignalClass = "system"
)

// Well-known signal types. The enumeration is open: producers may publish
// types not listed here, which are stored and classified as ClassSystem.
const (
	TypeTrustAllocate        = "TRUST_ALLOCATE"
	TypeTrustRevoke          = "TRUST_REVOKE"
	TypeTrustDecline         = "TRUST_DECLINE"
	TypeContactBondConfirmed = "CONTACT_BOND_CONFIRMED"
	TypeRecognitionMint      = "RECOGNITION_MINT"
	TypeVolunteerSaved       = "VOLUNTEER_SAVED"
	TypeProfileUpdated       = "PROFILE_UPDATED"
)

// Actors identifies the two participants of a signal.
// Values are ledger account ids or DIDs; derivation logic resolves
// DIDs through the identity resolver before comparing.
type Actors struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Provenance records where a signal entered the consensus log.
// (Topic, SequenceNumber) is the dedup key: the store accepts a given
// pair exactly once regardless of how often the mirror redelivers it.
type Provenance struct {
	Topic              string `json:"topic"`
	SequenceNumber     int64  `json:"sequence_number"`
	ConsensusTimestamp string `json:"consensus_timestamp"`
}

// SignalEvent is the canonical form of one consensus-log message.
// Immutable once accepted by the store.
type SignalEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Class      SignalClass    `json:"class"`
	Actors     Actors         `json:"actors"`
	Payload    map[string]any `json:"payload,omitempty"`
	TS         int64          `json:"ts"` // consensus time collapsed to nanoseconds
	Provenance Provenance     `json:"provenance"`
}

// Weight returns the trust weight carried in the payload, defaulting to 1
// when absent or malformed. JSON numbers decode as float64; producers that
// re-encode through integer types are accepted too.
func (e SignalEvent) Weight() int {
	v, ok := e.Payload["weight"]
	if !ok {
		return 1
	}
	switch w := v.(type) {
	case float64:
		return int(w)
	case int:
		return w
	case int64:
		return int(w)
	case string:
		if n, err := strconv.Atoi(w); err == nil {
			return n
		}
	}
	return 1
}

// Terminal reports whether the signal ends a trust edge rather than
// establishing one.
func (e SignalEvent) Terminal() bool {
	return e.Type == TypeTrustRevoke || e.Type == TypeTrustDecline
}

// EventID builds the stable signal id for a (topic, sequenceNumber) pair.
func EventID(topic string, sequenceNumber int64) string {
	return fmt.Sprintf("%s-%d", topic, sequenceNumber)
}

// CanonicalType normalizes a producer-supplied type string so inconsistent
// casing and separators still route to the same class and projections.
// "trust-allocate", "Trust Allocate" and "TRUST_ALLOCATE" all canonicalize
// to "TRUST_ALLOCATE".
func CanonicalType(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.ReplaceAll(t, "-", "_")
	t = strings.ReplaceAll(t, " ", "_")
	return strings.ToUpper(t)
}

// ClassOf maps a canonical type to its signal class.
// Unrecognized types fall into ClassSystem so the open enumeration stays
// storable without special cases downstream.
func ClassOf(canonicalType string) SignalClass {
	switch {
	case strings.HasPrefix(canonicalType, "TRUST_"):
		return ClassTrust
	case strings.HasPrefix(canonicalType, "RECOGNITION_"):
		return ClassRecognition
	case strings.HasPrefix(canonicalType, "CONTACT_"):
		return ClassContact
	case strings.HasPrefix(canonicalType, "PROFILE_"):
		return ClassProfile
	default:
		return ClassSystem
	}
}

// ParseConsensusTimestamp converts the mirror's "<seconds>.<nanos>" string
// into a single nanosecond count. The nanos part may be shorter than nine
// digits; missing digits are zero-padded on the right, matching how the
// consensus service truncates trailing zeros.
func ParseConsensusTimestamp(s string) (int64, error) {
	secPart, nanoPart, found := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse consensus timestamp %q: %w", s, err)
	}
	var nanos int64
	if found && nanoPart != "" {
		if len(nanoPart) > 9 {
			return 0, fmt.Errorf("parse consensus timestamp %q: nanos overflow", s)
		}
		padded := nanoPart + strings.Repeat("0", 9-len(nanoPart))
		nanos, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse consensus timestamp %q: %w", s, err)
		}
	}
	return sec*int64(time.Second) + nanos, nil
}

// FormatConsensusTimestamp is the inverse of ParseConsensusTimestamp,
// producing the "<seconds>.<nanos>" cursor form the mirror expects.
func FormatConsensusTimestamp(ns int64) string {
	return fmt.Sprintf("%d.%09d", ns/int64(time.Second), ns%int64(time.Second))
}

// ToISO renders a collapsed nanosecond timestamp as RFC3339 UTC.
func ToISO(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}

// BindingState tracks the lifecycle of a cached identity binding.
type BindingState string

const (
	BindingResolved BindingState = "Resolved"
	BindingStale    BindingState = "Stale"
)

// IdentityBinding maps a decentralized identifier to a ledger account id.
type IdentityBinding struct {
	Issuer     string       `json:"issuer"`
	AccountID  string       `json:"account_id"`
	ResolvedAt time.Time    `json:"resolved_at"`
	State      BindingState `json:"state"`
}

// Watermark is the highest consensus position already folded into the
// store for one (topic, type) source. Advance-only.
type Watermark struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	TS    int64  `json:"ts"`
}

// RecognitionSignal is an immutable minted recognition. The presentation
// fields (Label, Emoji, Description, Lens) are frozen at mint time; later
// lens configuration changes must never reach rows already stored.
type RecognitionSignal struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Description string `json:"description,omitempty"`
	Lens        string `json:"lens,omitempty"`
	From        string `json:"from"`
	To          string `json:"to"`
	Note        string `json:"note,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	TxID        string `json:"tx_id,omitempty"`
	NFTRef      string `json:"nft_ref,omitempty"`
}

// TrustCircleState is the derived, bounded trust projection for one
// participant. It is recomputed from the store on each request and has no
// lifecycle of its own.
type TrustCircleState struct {
	OutboundUsed      int      `json:"outbound_used"`
	OutboundAvailable int      `json:"outbound_available"`
	InboundTop9       []string `json:"inbound_top9"`
	LastConsensusISO  string   `json:"last_consensus_iso,omitempty"`
}
