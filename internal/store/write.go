package store

import (
	"context"
	"fmt"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// InsertSignal appends a canonical signal to the log.
// Uses ON CONFLICT(topic_id, sequence_number) DO NOTHING for idempotency
// per CP-1: redelivery of the same provenance is a silent no-op.
//
// Returns accepted=true when a new row was written, accepted=false when
// the provenance was already present. The dedup check and the insert are
// a single indivisible statement, so two concurrent pollers inserting the
// same provenance cannot both be accepted.
func (s *Store) InsertSignal(ctx context.Context, ev ledger.SignalEvent) (accepted bool, err error) {
	payloadJSON, err := marshalPayload(ev.Payload)
	if err != nil {
		return false, fmt.Errorf("insert signal: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO signals
		(id, topic_id, sequence_number, type, class, actor_from, actor_to, payload, ts, consensus_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(topic_id, sequence_number) DO NOTHING
	`,
		ev.ID,
		ev.Provenance.Topic,
		ev.Provenance.SequenceNumber,
		ev.Type,
		string(ev.Class),
		ev.Actors.From,
		ev.Actors.To,
		payloadJSON,
		ev.TS,
		ev.Provenance.ConsensusTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert signal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert signal: rows affected: %w", err)
	}
	return rows > 0, nil
}

// AdvanceWatermark raises the read cursor for a (topic, type) source to
// ts, per CP-2. The upsert takes MAX(existing, new) in one statement, so
// the cursor never moves backward even if a poll observes only records at
// or below the current watermark.
func (s *Store) AdvanceWatermark(ctx context.Context, topic, typ string, ts int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watermarks (topic_id, type, ts)
		VALUES (?, ?, ?)
		ON CONFLICT(topic_id, type) DO UPDATE SET ts = MAX(watermarks.ts, excluded.ts)
	`, topic, typ, ts)
	if err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}
	return nil
}

// AppendRecognition appends an immutable minted recognition signal.
// Uses ON CONFLICT(id) DO NOTHING: once minted, a recognition row is
// never altered, including by a re-mint of the same id.
func (s *Store) AppendRecognition(ctx context.Context, sig ledger.RecognitionSignal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recognitions
		(id, label, emoji, description, lens, actor_from, actor_to, note, ts, tx_id, nft_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sig.ID,
		sig.Label,
		sig.Emoji,
		sig.Description,
		sig.Lens,
		sig.From,
		sig.To,
		sig.Note,
		sig.Timestamp,
		sig.TxID,
		sig.NFTRef,
	)
	if err != nil {
		return fmt.Errorf("append recognition: %w", err)
	}
	return nil
}

// PutBinding upserts the cached identity binding for an issuer.
// Unlike signals, bindings are a cache: refreshes overwrite in place.
func (s *Store) PutBinding(ctx context.Context, b ledger.IdentityBinding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings (issuer, account_id, resolved_at, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(issuer) DO UPDATE SET
			account_id  = excluded.account_id,
			resolved_at = excluded.resolved_at,
			state       = excluded.state
	`, b.Issuer, b.AccountID, b.ResolvedAt.UnixNano(), string(b.State))
	if err != nil {
		return fmt.Errorf("put binding: %w", err)
	}
	return nil
}
