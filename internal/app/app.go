package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dailycheer/cheer-notifier/internal/biz"
	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
	"github.com/dailycheer/cheer-notifier/internal/conf"
	"github.com/dailycheer/cheer-notifier/internal/data"
	"github.com/dailycheer/cheer-notifier/internal/infra/feishu"
	"github.com/dailycheer/cheer-notifier/internal/infra/openai"
	"github.com/dailycheer/cheer-notifier/internal/infra/weather"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// App holds the wired engine shared by the notifier and the MCP server
type App struct {
	biz.Usecases

	Repos      *data.Repositories
	Characters *domain.CharacterSet
}

// New builds the repositories, seeds the catalog and wires the usecases
func New(ctx context.Context, cfg *conf.Config, logger logging.Logger) (*App, error) {
	log := logging.Component(logger, "app")

	clients := data.Clients{}
	if cfg.Weather.Enabled() {
		clients.Weather = weather.NewClient(weather.Config{
			APIKey:     cfg.Weather.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Weather.Timeout},
		})
		log.Info("weather lookups enabled")
	}
	if cfg.OpenAI.Enabled() {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		clients.Completer = client
		log.WithField("model", client.Model()).Info("message generation enabled")
	}
	if cfg.Feishu.Enabled() {
		clients.Feishu = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		clients.FeishuChatID = cfg.Feishu.ChatID
		log.Info("delivering to Feishu")
	}

	repos, err := data.NewRepositories(cfg.Store.DBPath, cfg.Store.SettingsPath, clients, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	seed, err := data.LoadSeed(cfg.Store.SeedPath)
	if err != nil {
		repos.Close()
		return nil, err
	}
	inserted, err := repos.Catalog.Seed(ctx, seed)
	if err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if inserted > 0 {
		log.WithField("count", inserted).Info("catalog seeded")
	}

	msgs, err := repos.Catalog.LoadAll(ctx)
	if err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := domain.NewCatalog(msgs)

	personas, err := conf.LoadPersonaConfig(cfg.Store.CharactersPath)
	if err != nil {
		repos.Close()
		return nil, err
	}
	characters := domain.NewCharacterSet(personas.Characters)

	selection := usecase.NewSelectionUsecase(catalog, nil)
	ledger := usecase.NewLedgerUsecase(repos.Ledger, catalog)
	delivery := usecase.NewDeliveryUsecase(usecase.DeliveryDeps{
		Settings:   repos.Settings,
		Snapshots:  usecase.NewSnapshotUsecase(repos.Weather, personas.SpecialDays, cfg.Weather.Timeout, logger),
		Selection:  selection,
		Remote:     usecase.NewRemoteContentUsecase(repos.Generator, cfg.OpenAI.Timeout, logger),
		Ledger:     ledger,
		Presenter:  repos.Presenter,
		Characters: characters,
		Logger:     logger,
	})

	log.WithFields(logging.Fields{
		"messages":   len(msgs),
		"characters": len(personas.Characters),
		"db":         cfg.Store.DBPath,
	}).Info("engine ready")

	return &App{
		Usecases: biz.Usecases{
			Selection: selection,
			Ledger:    ledger,
			Delivery:  delivery,
		},
		Repos:      repos,
		Characters: characters,
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.Repos.Close()
}
