package repo

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// WeatherRepo resolves a coordinate to a coarse weather category.
// It never fails: problems resolve to domain.WeatherUnknown.
type WeatherRepo interface {
	Lookup(ctx context.Context, lat, lon float64) domain.WeatherCategory
}
