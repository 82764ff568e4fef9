package data

import (
	"database/sql"

	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// Repositories contains all repositories
type Repositories struct {
	DB        *sql.DB
	Catalog   repo.CatalogRepo
	Ledger    repo.LedgerRepo
	Settings  repo.SettingsRepo
	Weather   repo.WeatherRepo   // nil when no weather API key is configured
	Generator repo.GeneratorRepo // nil when no generation API key is configured
	Presenter repo.Presenter
}

// Clients holds the optional upstream clients. Nil fields disable the feature.
type Clients struct {
	Weather      WeatherSource
	Completer    Completer
	Feishu       FeishuSender
	FeishuChatID string
}

// NewRepositories opens the database and creates all repositories
func NewRepositories(dbPath, settingsPath string, clients Clients, logger logging.Logger) (*Repositories, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}

	presenter := NewLogPresenter(logger)
	if clients.Feishu != nil && clients.FeishuChatID != "" {
		presenter = NewFeishuPresenter(clients.Feishu, clients.FeishuChatID)
	}

	r := &Repositories{
		DB:        db,
		Catalog:   NewCatalogRepo(db),
		Ledger:    NewLedgerRepo(db),
		Settings:  NewSettingsRepo(settingsPath),
		Presenter: presenter,
	}
	if clients.Weather != nil {
		r.Weather = NewWeatherRepo(clients.Weather, logger)
	}
	if clients.Completer != nil {
		r.Generator = NewGeneratorRepo(clients.Completer)
	}
	return r, nil
}

// Close closes the database
func (r *Repositories) Close() error {
	return r.DB.Close()
}
