package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dailycheer/cheer-notifier/internal/app"
	"github.com/dailycheer/cheer-notifier/internal/conf"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// send-now delivers a single cheer message and exits.
// It does not touch the timers of a running notifier.
func main() {
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLoggerWithService("send-now", cfg.LogLevel, cfg.Debug)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpenAI.Timeout+cfg.Weather.Timeout+30*time.Second)
	defer cancel()

	engine, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	res, err := engine.Delivery.Deliver(ctx, "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n%s\n", res.Title, res.Record.Content)
	if !res.Presented {
		fmt.Println("(recorded, but the notification could not be shown)")
	}
}
