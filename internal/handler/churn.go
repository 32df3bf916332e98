package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/churnlab/churnd/internal/model"
	"github.com/churnlab/churnd/internal/response"
	"github.com/churnlab/churnd/internal/service"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Scorer runs one synchronous scoring call.
type Scorer interface {
	Score(ctx context.Context, rec *model.CustomerRecord) (service.ScoreResult, error)
}

// PredictionLister reads back the prediction ledger, most recent first.
type PredictionLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.PredictionRecord, error)
}

// StatsReader provides the aggregate churn report.
type StatsReader interface {
	ChurnStats(ctx context.Context) (model.ChurnStats, error)
}

// ChurnHandler serves the scoring API: predict, history, stats, liveness.
type ChurnHandler struct {
	Scorer      Scorer
	Predictions PredictionLister
	Stats       StatsReader
	Validate    *validator.Validate
	Log         zerolog.Logger
}

// Health answers the liveness probe (GET /).
func (h *ChurnHandler) Health(c echo.Context) error {
	return response.OK(c, map[string]string{
		"status":  "ok",
		"message": "churn prediction API is running",
	})
}

// PredictChurn scores one customer record (POST /predict_churn). Malformed
// bodies get 400, validation failures 422; neither reaches the transformer
// or the ledger. Transform and scoring failures get 500.
func (h *ChurnHandler) PredictChurn(c echo.Context) error {
	var rec model.CustomerRecord
	if err := c.Bind(&rec); err != nil {
		return response.BadRequest(c, "invalid request body", err.Error())
	}
	if err := h.Validate.Struct(&rec); err != nil {
		return response.UnprocessableEntity(c, "invalid customer record", err.Error())
	}

	result, err := h.Scorer.Score(c.Request().Context(), &rec)
	if err != nil {
		h.Log.Error().Err(err).Str("customer_id", rec.CustomerID).Msg("scoring failed")
		return response.InternalError(c, "could not score record", err.Error())
	}
	return response.OK(c, result)
}

// ListPredictions returns recent predictions (GET /predictions?limit=N).
func (h *ChurnHandler) ListPredictions(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return response.BadRequest(c, "invalid limit", "limit must be a positive integer")
		}
		limit = min(n, maxHistoryLimit)
	}
	items, err := h.Predictions.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return response.InternalError(c, "list predictions failed", err.Error())
	}
	return response.OK(c, map[string]any{"items": items})
}

// ChurnStats returns the aggregate churn report (GET /stats/churn).
func (h *ChurnHandler) ChurnStats(c echo.Context) error {
	stats, err := h.Stats.ChurnStats(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "churn stats failed", err.Error())
	}
	return response.OK(c, stats)
}
