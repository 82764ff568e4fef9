package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// Mock implementations

type mockLedgerRepo struct {
	mu      sync.Mutex
	records []*domain.DeliveryRecord
	nextID  int64
	failErr error
}

func (m *mockLedgerRepo) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.failErr != nil {
		return m.failErr
	}
	for _, r := range m.records {
		if rec.SentAt.Before(r.SentAt) {
			rec.SentAt = r.SentAt
		}
	}
	m.nextID++
	rec.ID = m.nextID
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *mockLedgerRepo) Recent(ctx context.Context, n int) ([]*domain.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := append([]*domain.DeliveryRecord(nil), m.records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SentAt.Equal(sorted[j].SentAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].SentAt.After(sorted[j].SentAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func (m *mockLedgerRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

type mockSettingsRepo struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettingsRepo) Load(ctx context.Context) (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.settings
	return &cp, nil
}

type mockPresenter struct {
	mu        sync.Mutex
	titles    []string
	bodies    []string
	err       error
	panic     bool
	block     bool   // wait until ctx is done
	onPresent func() // runs after a successful present
}

func (m *mockPresenter) Present(ctx context.Context, title, body, iconRef string) error {
	if m.panic {
		panic("notification service gone")
	}
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.onPresent != nil {
		defer m.onPresent()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	m.bodies = append(m.bodies, body)
	return m.err
}

type mockWeatherRepo struct {
	category domain.WeatherCategory
	block    bool
	calls    int
}

func (m *mockWeatherRepo) Lookup(ctx context.Context, lat, lon float64) domain.WeatherCategory {
	m.calls++
	if m.block {
		<-ctx.Done()
		return domain.WeatherUnknown
	}
	return m.category
}

type mockGenerator struct {
	text    string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.text, m.err
}

var errUpstream = errors.New("upstream unavailable")

func testCharacter() *domain.Character {
	return &domain.Character{
		ID:                "friend_a",
		Name:              "Friend A",
		IconURL:           "https://example.com/a.png",
		PersonalityPrompt: "You are Friend A, a cheerful friend.",
		FallbackMessage:   "Hang in there! I'm rooting for you!",
	}
}
