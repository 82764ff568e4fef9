package repo

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// CatalogRepo is the catalog storage interface
// Seeding happens once; every later access is read-only
type CatalogRepo interface {
	// Count returns the number of stored messages
	Count(ctx context.Context) (int, error)

	// Seed bulk-loads msgs when the catalog is empty and returns the number inserted.
	// A non-empty catalog is left untouched.
	Seed(ctx context.Context, msgs []domain.Message) (int, error)

	// LoadAll returns every stored message in id order
	LoadAll(ctx context.Context) ([]domain.Message, error)
}
