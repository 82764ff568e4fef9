package repo

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// LedgerRepo is the delivery ledger storage interface (append-only)
type LedgerRepo interface {
	// Append inserts a record and fills in its ID. A SentAt earlier than the
	// newest stored record is raised to it atomically, and rec.SentAt is updated.
	Append(ctx context.Context, rec *domain.DeliveryRecord) error

	// Recent returns up to n records, most recent first
	Recent(ctx context.Context, n int) ([]*domain.DeliveryRecord, error)

	// Count returns the number of records
	Count(ctx context.Context) (int, error)
}
