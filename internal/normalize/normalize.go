// Package normalize turns raw mirror message envelopes into canonical
// signal events.
//
// The transform is pure: it never blocks, never touches the store, and a
// malformed record produces an error the caller counts and drops without
// aborting the surrounding poll cycle.
package normalize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// RawMessage is one record as returned by the mirror's topic message
// endpoint: a base64 payload plus provenance.
type RawMessage struct {
	Message            string `json:"message"`
	TopicID            string `json:"topic_id"`
	SequenceNumber     int64  `json:"sequence_number"`
	ConsensusTimestamp string `json:"consensus_timestamp"`
}

// envelope is the decoded JSON body published to the topic. Only the
// fields the core understands are named; everything else stays in the
// payload map untouched.
type envelope struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
	// Some producers nest actors one level down.
	Actor  string `json:"actor,omitempty"`
	Target string `json:"target,omitempty"`
}

// Event normalizes one raw mirror record into a canonical SignalEvent.
//
// Returns a ledger.Error with code PARSE_FAILURE when the payload is not
// base64, not well-formed JSON, or lacks a usable type field. The caller
// drops and counts such records.
func Event(raw RawMessage) (ledger.SignalEvent, error) {
	body, err := base64.StdEncoding.DecodeString(raw.Message)
	if err != nil {
		return ledger.SignalEvent{}, ledger.NewParseError(raw.TopicID, raw.SequenceNumber,
			fmt.Errorf("decode base64: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ledger.SignalEvent{}, ledger.NewParseError(raw.TopicID, raw.SequenceNumber,
			fmt.Errorf("decode payload: %w", err))
	}
	typ := ledger.CanonicalType(env.Type)
	if typ == "" {
		return ledger.SignalEvent{}, ledger.NewParseError(raw.TopicID, raw.SequenceNumber,
			fmt.Errorf("payload has no type field"))
	}

	ts, err := ledger.ParseConsensusTimestamp(raw.ConsensusTimestamp)
	if err != nil {
		return ledger.SignalEvent{}, ledger.NewParseError(raw.TopicID, raw.SequenceNumber, err)
	}

	// Keep the full decoded body as the payload so type-specific fields
	// (weight, note, lens, ...) survive for downstream projections.
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ledger.SignalEvent{}, ledger.NewParseError(raw.TopicID, raw.SequenceNumber,
			fmt.Errorf("decode payload map: %w", err))
	}
	delete(payload, "type")
	delete(payload, "from")
	delete(payload, "to")

	from := env.From
	if from == "" {
		from = env.Actor
	}
	to := env.To
	if to == "" {
		to = env.Target
	}

	return ledger.SignalEvent{
		ID:    ledger.EventID(raw.TopicID, raw.SequenceNumber),
		Type:  typ,
		Class: ledger.ClassOf(typ),
		Actors: ledger.Actors{
			From: ledger.CanonicalID(from),
			To:   ledger.CanonicalID(to),
		},
		Payload: payload,
		TS:      ts,
		Provenance: ledger.Provenance{
			Topic:              raw.TopicID,
			SequenceNumber:     raw.SequenceNumber,
			ConsensusTimestamp: raw.ConsensusTimestamp,
		},
	}, nil
}
