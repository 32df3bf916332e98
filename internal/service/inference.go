// Package service orchestrates the synchronous scoring path:
// transform -> predict -> classify -> append.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/churnlab/churnd/internal/artifact"
	"github.com/churnlab/churnd/internal/features"
	"github.com/churnlab/churnd/internal/model"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "churn", Subsystem: "inference", Name: "predictions_total", Help: "Scored predictions by risk label."},
		[]string{"risk_label"},
	)
	ledgerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "churn", Subsystem: "ledger", Name: "failures_total", Help: "Prediction ledger appends that failed or timed out."},
	)
	transformFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "churn", Subsystem: "inference", Name: "transform_failures_total", Help: "Requests rejected because feature derivation failed."},
	)
)

func init() {
	_ = prometheus.Register(predictionsTotal)
	_ = prometheus.Register(ledgerFailures)
	_ = prometheus.Register(transformFailures)
}

// TransformError wraps a feature-derivation or scoring failure; the request
// is rejected and nothing is written to the ledger.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string { return fmt.Sprintf("feature transform: %v", e.Err) }

func (e *TransformError) Unwrap() error { return e.Err }

// Ledger is the append-only store of scored results.
type Ledger interface {
	Append(ctx context.Context, customerID string, probability float64, label model.RiskLabel) (model.PredictionRecord, error)
}

// ScoreResult is the outcome of one scoring call.
type ScoreResult struct {
	CustomerID  string          `json:"customerID"`
	Probability float64         `json:"churn_probability"`
	RiskLabel   model.RiskLabel `json:"risk_label"`
}

// Inference scores customer records against the loaded model artifact and
// records every result in the ledger. The artifact is the only shared state
// and is read-only, so Score is safe for concurrent use.
type Inference struct {
	art            *artifact.Artifact
	ledger         Ledger
	log            zerolog.Logger
	persistTimeout time.Duration
}

// NewInference wires an Inference service. persistTimeout bounds the ledger
// append; zero means the request context alone bounds it.
func NewInference(art *artifact.Artifact, ledger Ledger, log zerolog.Logger, persistTimeout time.Duration) *Inference {
	return &Inference{art: art, ledger: ledger, log: log, persistTimeout: persistTimeout}
}

// Score derives features for rec, computes the churn probability, buckets it
// into a risk label and appends the result to the ledger.
//
// Persistence is fail-open: once a probability exists the caller gets it even
// if the ledger append fails. The failure is logged and counted, never
// swallowed silently, and never turned into a rejected request.
func (s *Inference) Score(ctx context.Context, rec *model.CustomerRecord) (ScoreResult, error) {
	vec, err := features.Transform(rec, s.art)
	if err != nil {
		transformFailures.Inc()
		return ScoreResult{}, &TransformError{Err: err}
	}

	prob, err := s.art.PredictProba(vec.Values())
	if err != nil {
		transformFailures.Inc()
		return ScoreResult{}, &TransformError{Err: err}
	}

	label := model.RiskLabelFor(prob)
	predictionsTotal.WithLabelValues(string(label)).Inc()

	appendCtx := ctx
	if s.persistTimeout > 0 {
		var cancel context.CancelFunc
		appendCtx, cancel = context.WithTimeout(ctx, s.persistTimeout)
		defer cancel()
	}
	if _, err := s.ledger.Append(appendCtx, rec.CustomerID, prob, label); err != nil {
		ledgerFailures.Inc()
		s.log.Error().Err(err).
			Str("customer_id", rec.CustomerID).
			Float64("churn_probability", prob).
			Str("risk_label", string(label)).
			Msg("ledger append failed; returning score anyway")
	}

	return ScoreResult{
		CustomerID:  rec.CustomerID,
		Probability: prob,
		RiskLabel:   label,
	}, nil
}
