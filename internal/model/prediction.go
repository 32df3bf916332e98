package model

import "time"

type RiskLabel string

const (
	RiskLow    RiskLabel = "LOW"
	RiskMedium RiskLabel = "MEDIUM"
	RiskHigh   RiskLabel = "HIGH"
)

// RiskLabelFor buckets a churn probability into a coarse risk label.
// Boundaries are half-open: [0, 0.33) LOW, [0.33, 0.66) MEDIUM, [0.66, 1] HIGH.
func RiskLabelFor(prob float64) RiskLabel {
	switch {
	case prob < 0.33:
		return RiskLow
	case prob < 0.66:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// PredictionRecord is one scored result as stored in the ledger.
// Records are append-only; ids are assigned by the database and never reused.
type PredictionRecord struct {
	ID          int64     `json:"id"`
	CustomerID  string    `json:"customerID"`
	Probability float64   `json:"churn_probability"`
	RiskLabel   RiskLabel `json:"risk_label"`
	PredictedAt time.Time `json:"predicted_at"`
}

// ContractChurnRate is the churn rate for one contract type.
type ContractChurnRate struct {
	Contract  string  `json:"contract"`
	ChurnRate float64 `json:"churn_rate"`
}

// PaymentMethodChurnRate is the churn rate for one payment method.
type PaymentMethodChurnRate struct {
	PaymentMethod string  `json:"payment_method"`
	ChurnRate     float64 `json:"churn_rate"`
}

// ChurnStats is the aggregate report over the raw customer table maintained
// by the offline pipeline.
type ChurnStats struct {
	TotalCustomers   int64                    `json:"total_customers"`
	ChurnRateOverall float64                  `json:"churn_rate_overall"`
	ByContract       []ContractChurnRate      `json:"churn_rate_by_contract"`
	ByPaymentMethod  []PaymentMethodChurnRate `json:"churn_rate_by_payment_method"`
}
