package server

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/churnlab/churnd/internal/artifact"
	"github.com/churnlab/churnd/internal/config"
	"github.com/churnlab/churnd/internal/handler"
	"github.com/churnlab/churnd/internal/repository"
	"github.com/churnlab/churnd/internal/service"
)

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	Log    zerolog.Logger
}

// New builds the Echo server and registers routes. Caller must provide a
// non-nil pool and a loaded model artifact.
func New(cfg *config.Config, pool *pgxpool.Pool, art *artifact.Artifact, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	ledger := repository.NewPredictionRepository(pool)
	inference := service.NewInference(art, ledger, log,
		time.Duration(cfg.Server.PersistTimeout)*time.Second)

	h := &handler.ChurnHandler{
		Scorer:      inference,
		Predictions: ledger,
		Stats:       repository.NewStatsRepository(pool),
		Validate:    validator.New(),
		Log:         log,
	}

	e.GET("/", h.Health)
	e.POST("/predict_churn", h.PredictChurn)
	e.GET("/predictions", h.ListPredictions)
	e.GET("/stats/churn", h.ChurnStats)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{Echo: e, Config: cfg, Log: log}
}

// Start starts the HTTP server. Blocks until the context is cancelled or the
// server fails; on cancel the server is shut down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	return s.Echo.Start(":" + s.Config.Server.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
