package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

const (
	// avoidRecentDefault is how many past deliveries the catalog selection tries not to repeat
	avoidRecentDefault = 3

	defaultPresentTimeout = 15 * time.Second
	recordTimeout         = 5 * time.Second
)

// DeliveryUsecase runs one select → present → record sequence
type DeliveryUsecase struct {
	settings   repo.SettingsRepo
	snapshots  *SnapshotUsecase
	selection  *SelectionUsecase
	remote     *RemoteContentUsecase
	ledger     *LedgerUsecase
	presenter  repo.Presenter
	characters *domain.CharacterSet

	now            func() time.Time
	avoidRecent    int
	presentTimeout time.Duration
	logger         logging.Logger
}

// DeliveryDeps groups the collaborators of a DeliveryUsecase
type DeliveryDeps struct {
	Settings       repo.SettingsRepo
	Snapshots      *SnapshotUsecase
	Selection      *SelectionUsecase
	Remote         *RemoteContentUsecase
	Ledger         *LedgerUsecase
	Presenter      repo.Presenter
	Characters     *domain.CharacterSet
	Now            func() time.Time // defaults to time.Now
	PresentTimeout time.Duration    // bounds the presenter call, defaults to 15s
	Logger         logging.Logger
}

// NewDeliveryUsecase creates a delivery usecase
func NewDeliveryUsecase(deps DeliveryDeps) *DeliveryUsecase {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	presentTimeout := deps.PresentTimeout
	if presentTimeout <= 0 {
		presentTimeout = defaultPresentTimeout
	}
	return &DeliveryUsecase{
		settings:       deps.Settings,
		snapshots:      deps.Snapshots,
		selection:      deps.Selection,
		remote:         deps.Remote,
		ledger:         deps.Ledger,
		presenter:      deps.Presenter,
		characters:     deps.Characters,
		now:            now,
		avoidRecent:    avoidRecentDefault,
		presentTimeout: presentTimeout,
		logger:         logging.Component(deps.Logger, "delivery"),
	}
}

// DeliveryResult describes one completed delivery
type DeliveryResult struct {
	FiringID  string                 `json:"firing_id"`
	Record    *domain.DeliveryRecord `json:"record"`
	Title     string                 `json:"title"`
	Presented bool                   `json:"presented"`
	Snapshot  domain.Snapshot        `json:"-"`
}

// Deliver produces a message for the current context, presents it and records it.
// slot is empty for manual sends. Presentation failures are logged and the
// delivery is still recorded; only a ledger failure is returned.
func (uc *DeliveryUsecase) Deliver(ctx context.Context, slot string) (*DeliveryResult, error) {
	firingID := uuid.NewString()
	log := uc.logger.WithFields(logging.Fields{"firing_id": firingID, "slot": slot})

	settings, err := uc.settings.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load settings, using defaults")
		settings = domain.DefaultSettings()
	}

	snap := uc.snapshots.Build(ctx, uc.now(), settings)
	character := uc.characters.Resolve(settings.SelectedCharacter)

	msgID, content, source := uc.choose(ctx, settings, snap, character, log)

	result := &DeliveryResult{
		FiringID: firingID,
		Title:    character.NotificationTitle(),
		Snapshot: snap,
	}

	if err := uc.present(ctx, result.Title, content, character.IconURL); err != nil {
		log.WithError(err).Warn("presentation failed, recording delivery anyway")
	} else {
		result.Presented = true
	}

	rec := &domain.DeliveryRecord{
		MessageID:   msgID,
		Content:     content,
		Source:      source,
		CharacterID: character.ID,
		Slot:        slot,
		SentAt:      uc.now(),
	}
	result.Record = rec

	// Once presented, the record must land even if the caller has gone away
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := uc.ledger.Record(recordCtx, rec); err != nil {
		return result, fmt.Errorf("failed to record delivery: %w", err)
	}

	log.WithFields(logging.Fields{
		"message_id": msgID,
		"source":     source,
		"presented":  result.Presented,
		"time":       snap.TimeBucket,
		"day":        snap.DayBucket,
		"season":     snap.Season,
	}).Info("delivered")
	return result, nil
}

func (uc *DeliveryUsecase) choose(ctx context.Context, settings *domain.Settings, snap domain.Snapshot, character *domain.Character, log logging.Logger) (int64, string, domain.DeliverySource) {
	if settings.Mode == domain.ModeGenerative {
		text, fallback := uc.remote.Generate(ctx, PromptInput{
			Character:  character,
			Weather:    snap.Weather,
			TimeBucket: snap.TimeBucket,
			SpecialDay: snap.SpecialDayName(),
			Season:     snap.Season,
		})
		if fallback {
			return domain.SentinelID, text, domain.SourceFallback
		}
		return domain.SentinelID, text, domain.SourceGenerated
	}

	if snap.SpecialDay != nil {
		if m, ok := uc.selection.SelectForOccasion(snap.SpecialDay.Tag); ok {
			return m.ID, m.Content, domain.SourceCatalog
		}
	}

	recent, err := uc.ledger.RecentMessageIDs(ctx, uc.avoidRecent)
	if err != nil {
		log.WithError(err).Warn("failed to read recent deliveries, selecting without exclusions")
	}

	// Occasion messages stay out of ordinary days unless nothing else matches
	occasions := uc.selection.Catalog().OccasionIDs()
	m := uc.selection.SelectAvoiding(snap.TimeBucket, snap.DayBucket, snap.Season, occasions, recent)
	if m.ID == domain.SentinelID {
		return m.ID, m.Content, domain.SourceSentinel
	}
	return m.ID, m.Content, domain.SourceCatalog
}

// present calls the presenter within presentTimeout and turns a panic into an error.
// A presenter that ignores its context is abandoned when the timeout expires.
func (uc *DeliveryUsecase) present(ctx context.Context, title, body, icon string) error {
	if uc.presenter == nil {
		return fmt.Errorf("no presenter configured")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.presentTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("presenter panic: %v", r)
			}
		}()
		done <- uc.presenter.Present(ctx, title, body, icon)
	}()

	timer := time.NewTimer(uc.presentTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("presenter: %w", context.DeadlineExceeded)
	}
}
