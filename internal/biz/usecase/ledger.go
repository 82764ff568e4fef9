package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
)

// DefaultHistoryLimit is the history size returned when no limit is given
const DefaultHistoryLimit = 50

// LedgerUsecase guards the delivery ledger.
// Appends are serialized and reads only see completed appends.
// The repository keeps timestamps from going backwards, across processes sharing the store.
type LedgerUsecase struct {
	repo    repo.LedgerRepo
	catalog *domain.Catalog

	mu sync.RWMutex
}

// NewLedgerUsecase creates a ledger usecase
func NewLedgerUsecase(ledgerRepo repo.LedgerRepo, catalog *domain.Catalog) *LedgerUsecase {
	return &LedgerUsecase{repo: ledgerRepo, catalog: catalog}
}

// Record appends a delivery. The message id must exist in the catalog (or be the sentinel).
// A sentAt earlier than the newest record is clamped to it and rec is updated.
func (uc *LedgerUsecase) Record(ctx context.Context, rec *domain.DeliveryRecord) error {
	if !uc.catalog.Contains(rec.MessageID) {
		return fmt.Errorf("record delivery of %d: %w", rec.MessageID, domain.ErrUnknownMessage)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.repo.Append(ctx, rec)
}

// Recent returns up to n records, most recent first
func (uc *LedgerUsecase) Recent(ctx context.Context, n int) ([]*domain.DeliveryRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.repo.Recent(ctx, n)
}

// History returns the delivery history, defaulting to DefaultHistoryLimit entries
func (uc *LedgerUsecase) History(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return uc.Recent(ctx, limit)
}

// RecentMessageIDs returns the message ids of the last n catalog deliveries
func (uc *LedgerUsecase) RecentMessageIDs(ctx context.Context, n int) ([]int64, error) {
	recs, err := uc.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, r := range recs {
		if r.MessageID != domain.SentinelID {
			ids = append(ids, r.MessageID)
		}
	}
	return ids, nil
}

// Last returns the most recent delivery, or nil
func (uc *LedgerUsecase) Last(ctx context.Context) (*domain.DeliveryRecord, error) {
	recs, err := uc.Recent(ctx, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}
