// Command ingest loads the recipe feed into the vector index once and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/windoze95/dishfinder-api/internal/app"
	"github.com/windoze95/dishfinder-api/internal/config"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"go.uber.org/zap"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Minute, "maximum time for the whole run")
	verbose := flag.Bool("v", false, "development logging")
	flag.Parse()

	logger.Init(*verbose)
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Get().Fatal("invalid config", zap.Error(err))
	}
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	services, err := app.New(ctx, cfg)
	if err != nil {
		logger.Get().Fatal("failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	summary, err := services.Ingest.IngestAll(ctx)
	if err != nil {
		logger.Get().Error("ingestion failed", zap.Error(err))
		services.Close()
		logger.Sync()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logger.Get().Error("failed to write summary", zap.Error(err))
	}
}
