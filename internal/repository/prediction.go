package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/churnlab/churnd/internal/model"
)

// PredictionRepository is the append-only ledger of scored results.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPredictionRepository returns a PredictionRepository using the given pool.
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

// Append inserts one prediction and returns the stored record with its
// database-assigned id and timestamp. Id assignment rides on the bigserial
// column inside the single insert, so concurrent appends get distinct,
// strictly increasing ids without any locking here.
func (r *PredictionRepository) Append(ctx context.Context, customerID string, probability float64, label model.RiskLabel) (model.PredictionRecord, error) {
	rec := model.PredictionRecord{
		CustomerID:  customerID,
		Probability: probability,
		RiskLabel:   label,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO predictions (customer_id, churn_probability, risk_label)
		VALUES ($1, $2, $3)
		RETURNING id, predicted_at`,
		customerID, probability, string(label),
	).Scan(&rec.ID, &rec.PredictedAt)
	return rec, err
}

// ListRecent returns up to limit predictions, most recent first.
func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, churn_probability, risk_label, predicted_at
		FROM predictions
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.PredictionRecord, 0, limit)
	for rows.Next() {
		var rec model.PredictionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CustomerID,
			&rec.Probability,
			&rec.RiskLabel,
			&rec.PredictedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
