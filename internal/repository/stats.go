package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/churnlab/churnd/internal/model"
)

// StatsRepository reads aggregate churn rates from the customers_raw table.
// That table is populated by the offline batch pipeline; this service never
// writes to it.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a StatsRepository using the given pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// ChurnStats returns the overall churn rate plus rates grouped by contract
// type and by payment method.
func (r *StatsRepository) ChurnStats(ctx context.Context) (model.ChurnStats, error) {
	var stats model.ChurnStats

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(CASE WHEN "Churn" = 'Yes' THEN 1.0 ELSE 0.0 END), 0)
		FROM customers_raw`).Scan(&stats.TotalCustomers, &stats.ChurnRateOverall)
	if err != nil {
		return stats, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT "Contract",
		       AVG(CASE WHEN "Churn" = 'Yes' THEN 1.0 ELSE 0.0 END)
		FROM customers_raw
		GROUP BY "Contract"
		ORDER BY "Contract"`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var b model.ContractChurnRate
		if err := rows.Scan(&b.Contract, &b.ChurnRate); err != nil {
			return stats, err
		}
		stats.ByContract = append(stats.ByContract, b)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT "PaymentMethod",
		       AVG(CASE WHEN "Churn" = 'Yes' THEN 1.0 ELSE 0.0 END)
		FROM customers_raw
		GROUP BY "PaymentMethod"
		ORDER BY "PaymentMethod"`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var b model.PaymentMethodChurnRate
		if err := rows.Scan(&b.PaymentMethod, &b.ChurnRate); err != nil {
			return stats, err
		}
		stats.ByPaymentMethod = append(stats.ByPaymentMethod, b)
	}
	return stats, rows.Err()
}
