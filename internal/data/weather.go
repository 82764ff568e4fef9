package data

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/infra/weather"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// WeatherSource is the part of the weather client the repository needs
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (weather.Condition, error)
}

// weatherRepo implements the Weather repository
type weatherRepo struct {
	client WeatherSource
	logger logging.Logger
}

// NewWeatherRepo creates a weather repository. A nil client disables lookups.
func NewWeatherRepo(client WeatherSource, logger logging.Logger) repo.WeatherRepo {
	if client == nil {
		return nil
	}
	return &weatherRepo{client: client, logger: logging.Component(logger, "weather")}
}

// Lookup returns the weather category, or unknown on any failure
func (r *weatherRepo) Lookup(ctx context.Context, lat, lon float64) domain.WeatherCategory {
	cond, err := r.client.Current(ctx, lat, lon)
	if err != nil {
		r.logger.WithError(err).Warn("weather lookup failed")
		return domain.WeatherUnknown
	}
	return toCategory(cond)
}

func toCategory(c weather.Condition) domain.WeatherCategory {
	switch c {
	case weather.ConditionClear:
		return domain.WeatherClear
	case weather.ConditionClouds:
		return domain.WeatherClouds
	case weather.ConditionRain:
		return domain.WeatherRain
	case weather.ConditionDrizzle:
		return domain.WeatherDrizzle
	case weather.ConditionThunderstorm:
		return domain.WeatherThunderstorm
	case weather.ConditionSnow:
		return domain.WeatherSnow
	case weather.ConditionFog:
		return domain.WeatherFog
	default:
		return domain.WeatherUnknown
	}
}
