package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flipledger/internal/app"
	"flipledger/internal/config"
	"flipledger/internal/interfaces/router"
	"flipledger/internal/pkg/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	s, err := app.Wire(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := s.Verify(ctx); err != nil {
		return fmt.Errorf("startup check: %w", err)
	}

	log.Info().Msgf("Server running at http://localhost:%s", cfg.Port)
	log.Info().Msgf("Health check: http://localhost:%s/health/json", cfg.Port)
	return router.Serve(ctx, router.CreateApp(s), ":"+cfg.Port)
}
