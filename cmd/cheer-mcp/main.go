package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dailycheer/cheer-notifier/internal/app"
	"github.com/dailycheer/cheer-notifier/internal/conf"
	"github.com/dailycheer/cheer-notifier/internal/logging"
	"github.com/dailycheer/cheer-notifier/internal/mcp"
)

// cheer-mcp exposes the notifier engine as MCP tools over stdio.
// Logs go to stderr so stdout stays reserved for the protocol.
func main() {
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	logger := logging.NewLoggerWithService("cheer-mcp", cfg.LogLevel, cfg.Debug)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start engine")
	}
	defer engine.Close()

	server := mcp.NewServer(engine.Delivery, engine.Ledger, engine.Selection, engine.Characters, logger)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("MCP server error")
	}
}
