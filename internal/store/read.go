package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// ActorRole selects which side of a signal an actor query matches.
type ActorRole string

const (
	RoleFrom   ActorRole = "from"
	RoleTo     ActorRole = "to"
	RoleEither ActorRole = "either"
)

const signalColumns = `id, topic_id, sequence_number, type, class, actor_from, actor_to, payload, ts, consensus_timestamp`

// SignalsByType returns all signals of one canonical type.
// Results are ordered deterministically per CP-3: ORDER BY ts ASC, id ASC
// COLLATE BINARY. Returns an empty slice (not nil) when nothing matches.
func (s *Store) SignalsByType(ctx context.Context, typ string) ([]ledger.SignalEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+signalColumns+`
		FROM signals
		WHERE type = ?
		ORDER BY ts ASC, id COLLATE BINARY ASC
	`, typ)
	if err != nil {
		return nil, fmt.Errorf("query signals by type: %w", err)
	}
	defer rows.Close()

	return collectSignals(rows)
}

// SignalsByActor returns all signals where the participant appears in the
// given role. Ordering follows CP-3.
func (s *Store) SignalsByActor(ctx context.Context, participant string, role ActorRole) ([]ledger.SignalEvent, error) {
	participant = ledger.CanonicalID(participant)

	var where string
	args := []any{participant}
	switch role {
	case RoleFrom:
		where = "actor_from = ?"
	case RoleTo:
		where = "actor_to = ?"
	case RoleEither:
		where = "(actor_from = ? OR actor_to = ?)"
		args = append(args, participant)
	default:
		return nil, fmt.Errorf("query signals by actor: unknown role %q", role)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+signalColumns+`
		FROM signals
		WHERE `+where+`
		ORDER BY ts ASC, id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals by actor: %w", err)
	}
	defer rows.Close()

	return collectSignals(rows)
}

// HighWatermark returns the read cursor for a (topic, type) source.
// A source that has never been polled reports ts=0.
func (s *Store) HighWatermark(ctx context.Context, topic, typ string) (ledger.Watermark, error) {
	wm := ledger.Watermark{Topic: topic, Type: typ}
	err := s.db.QueryRowContext(ctx, `
		SELECT ts FROM watermarks WHERE topic_id = ? AND type = ?
	`, topic, typ).Scan(&wm.TS)
	if errors.Is(err, sql.ErrNoRows) {
		return wm, nil
	}
	if err != nil {
		return ledger.Watermark{}, fmt.Errorf("query watermark: %w", err)
	}
	return wm, nil
}

// RecognitionsForUser returns every recognition signal where the account
// is sender or recipient, most recent insertion first.
func (s *Store) RecognitionsForUser(ctx context.Context, accountID string) ([]ledger.RecognitionSignal, error) {
	accountID = ledger.CanonicalID(accountID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, emoji, description, lens, actor_from, actor_to, note, ts, tx_id, nft_ref
		FROM recognitions
		WHERE actor_from = ? OR actor_to = ?
		ORDER BY seq DESC
	`, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("query recognitions: %w", err)
	}
	defer rows.Close()

	signals := []ledger.RecognitionSignal{}
	for rows.Next() {
		var sig ledger.RecognitionSignal
		if err := rows.Scan(
			&sig.ID, &sig.Label, &sig.Emoji, &sig.Description, &sig.Lens,
			&sig.From, &sig.To, &sig.Note, &sig.Timestamp, &sig.TxID, &sig.NFTRef,
		); err != nil {
			return nil, fmt.Errorf("scan recognition: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recognitions: %w", err)
	}
	return signals, nil
}

// GetBinding returns the cached identity binding for an issuer.
// found=false means the issuer has never been resolved.
func (s *Store) GetBinding(ctx context.Context, issuer string) (ledger.IdentityBinding, bool, error) {
	var (
		b          ledger.IdentityBinding
		resolvedAt int64
		state      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT issuer, account_id, resolved_at, state FROM bindings WHERE issuer = ?
	`, issuer).Scan(&b.Issuer, &b.AccountID, &resolvedAt, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.IdentityBinding{}, false, nil
	}
	if err != nil {
		return ledger.IdentityBinding{}, false, fmt.Errorf("query binding: %w", err)
	}
	b.ResolvedAt = time.Unix(0, resolvedAt)
	b.State = ledger.BindingState(state)
	return b, true, nil
}

// collectSignals drains a signal query into a slice.
func collectSignals(rows *sql.Rows) ([]ledger.SignalEvent, error) {
	events := []ledger.SignalEvent{}
	for rows.Next() {
		ev, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return events, nil
}

func scanSignal(rows *sql.Rows) (ledger.SignalEvent, error) {
	var (
		ev          ledger.SignalEvent
		class       string
		payloadText string
	)
	if err := rows.Scan(
		&ev.ID,
		&ev.Provenance.Topic,
		&ev.Provenance.SequenceNumber,
		&ev.Type,
		&class,
		&ev.Actors.From,
		&ev.Actors.To,
		&payloadText,
		&ev.TS,
		&ev.Provenance.ConsensusTimestamp,
	); err != nil {
		return ledger.SignalEvent{}, fmt.Errorf("scan signal: %w", err)
	}
	ev.Class = ledger.SignalClass(class)
	payload, err := unmarshalPayload(payloadText)
	if err != nil {
		return ledger.SignalEvent{}, fmt.Errorf("scan signal: %w", err)
	}
	ev.Payload = payload
	return ev, nil
}
