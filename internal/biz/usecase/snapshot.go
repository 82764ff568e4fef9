package usecase

import (
	"context"
	"time"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

const defaultWeatherTimeout = 10 * time.Second

// SnapshotUsecase derives the context of a firing from the clock, settings and weather
type SnapshotUsecase struct {
	weather     repo.WeatherRepo // nil means weather is always unknown
	specialDays []domain.SpecialDay
	timeout     time.Duration
	logger      logging.Logger
}

// NewSnapshotUsecase creates a snapshot usecase
func NewSnapshotUsecase(weather repo.WeatherRepo, specialDays []domain.SpecialDay, timeout time.Duration, logger logging.Logger) *SnapshotUsecase {
	if timeout <= 0 {
		timeout = defaultWeatherTimeout
	}
	return &SnapshotUsecase{
		weather:     weather,
		specialDays: specialDays,
		timeout:     timeout,
		logger:      logging.Component(logger, "weather"),
	}
}

// Build computes the snapshot for now. It blocks at most the weather timeout.
func (uc *SnapshotUsecase) Build(ctx context.Context, now time.Time, settings *domain.Settings) domain.Snapshot {
	snap := domain.Snapshot{
		At:         now,
		TimeBucket: domain.TimeBucketAt(now),
		DayBucket:  domain.DayBucketAt(now),
		Season:     domain.SeasonAt(now),
		SpecialDay: domain.FindSpecialDay(now, settings.UserBirthday, uc.specialDays),
	}

	if settings.UseWeather {
		w := uc.lookupWeather(ctx, settings.Location)
		snap.Weather = &w
	}
	return snap
}

func (uc *SnapshotUsecase) lookupWeather(ctx context.Context, loc *domain.Location) domain.WeatherCategory {
	if uc.weather == nil || loc == nil {
		return domain.WeatherUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	result := make(chan domain.WeatherCategory, 1)
	go func() {
		result <- uc.weather.Lookup(ctx, loc.Lat, loc.Lon)
	}()

	select {
	case w := <-result:
		if w == "" {
			return domain.WeatherUnknown
		}
		return w
	case <-ctx.Done():
		uc.logger.WithField("timeout", uc.timeout).Warn("weather lookup timed out")
		return domain.WeatherUnknown
	}
}
