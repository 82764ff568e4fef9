package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
)

// ledgerRepo implements the Ledger repository on the sent_history table
type ledgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo creates a new Ledger repository
func NewLedgerRepo(db *sql.DB) repo.LedgerRepo {
	return &ledgerRepo{db: db}
}

// Append inserts a record. sent_at is clamped inside the insert so writers
// in other processes cannot interleave an older timestamp.
func (r *ledgerRepo) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	var id, sentAt int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sent_history (message_id, content, source, character_id, slot, sent_at)
		SELECT ?, ?, ?, ?, ?, MAX(?, COALESCE(MAX(sent_at), 0)) FROM sent_history
		RETURNING id, sent_at
	`,
		rec.MessageID,
		rec.Content,
		string(rec.Source),
		rec.CharacterID,
		rec.Slot,
		rec.SentAt.UnixNano(),
	).Scan(&id, &sentAt)
	if err != nil {
		return fmt.Errorf("failed to append delivery: %w", err)
	}

	rec.ID = id
	if sentAt != rec.SentAt.UnixNano() {
		rec.SentAt = time.Unix(0, sentAt)
	}
	return nil
}

// Recent returns up to n records, most recent first
func (r *ledgerRepo) Recent(ctx context.Context, n int) ([]*domain.DeliveryRecord, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message_id, content, source, character_id, slot, sent_at
		FROM sent_history
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var recs []*domain.DeliveryRecord
	for rows.Next() {
		var rec domain.DeliveryRecord
		var source string
		var sentAt int64
		if err := rows.Scan(&rec.ID, &rec.MessageID, &rec.Content, &source, &rec.CharacterID, &rec.Slot, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		rec.Source = domain.DeliverySource(source)
		rec.SentAt = time.Unix(0, sentAt)
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deliveries: %w", err)
	}
	return recs, nil
}

// Count returns the number of records
func (r *ledgerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sent_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count deliveries: %w", err)
	}
	return n, nil
}
