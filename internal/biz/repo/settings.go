package repo

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// SettingsRepo reads user settings. The core never writes them.
type SettingsRepo interface {
	Load(ctx context.Context) (*domain.Settings, error)
}
