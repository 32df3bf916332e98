package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/churnlab/churnd/internal/artifact"
	"github.com/churnlab/churnd/internal/config"
	"github.com/churnlab/churnd/internal/database"
	"github.com/churnlab/churnd/internal/server"
)

func main() {
	cfg := config.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "churnd").Logger()
	if cfg.Primary.Env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	useNewRelic := cfg.NewRelic.LicenseKey != ""
	if useNewRelic {
		_, err := newrelic.NewApplication(
			newrelic.ConfigAppName("churnd"),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		)
		if err != nil {
			log.Warn().Err(err).Msg("new relic disabled")
			useNewRelic = false
		}
	}

	// The model bundle is loaded exactly once; a bad bundle means the
	// process refuses to start instead of serving skewed predictions.
	art, err := artifact.Load(cfg.Model.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("load model artifact")
	}
	log.Info().
		Str("path", cfg.Model.Path).
		Int("feature_cols", len(art.FeatureCols())).
		Int("numeric_cols", len(art.NumericCols())).
		Msg("model artifact loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg, log, useNewRelic)
	if err != nil {
		log.Fatal().Err(err).Msg("database pool")
	}
	defer pool.Close()

	srv := server.New(cfg, pool, art, log)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
