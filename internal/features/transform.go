// Package features derives the classifier's feature representation from a
// raw customer record. The derivation rules here must stay byte-for-byte
// consistent with the offline pipeline that built the training set; the
// offline job reuses the exported helpers for exactly that reason.
package features

import (
	"fmt"

	"github.com/churnlab/churnd/internal/artifact"
	"github.com/churnlab/churnd/internal/model"
)

// ServiceFields is the fixed, ordered list of service-flag fields counted
// into total_services.
var ServiceFields = []string{
	"PhoneService",
	"MultipleLines",
	"InternetService",
	"OnlineSecurity",
	"OnlineBackup",
	"DeviceProtection",
	"TechSupport",
	"StreamingTV",
	"StreamingMovies",
}

// Vector is a feature vector aligned to an artifact's feature-column list:
// same columns, same order, numeric columns already scaled.
type Vector struct {
	cols   []string
	values []float64
}

// Values returns the ordered feature values. Callers must not mutate.
func (v Vector) Values() []float64 { return v.values }

// Columns returns the ordered column names. Callers must not mutate.
func (v Vector) Columns() []string { return v.cols }

// At returns the value for a named column.
func (v Vector) At(col string) (float64, bool) {
	for i, c := range v.cols {
		if c == col {
			return v.values[i], true
		}
	}
	return 0, false
}

// TenureBand maps tenure in months to its band, inclusive upper bounds
// 6, 12, 24 and 48.
func TenureBand(tenure int) string {
	switch {
	case tenure <= 6:
		return "0-6"
	case tenure <= 12:
		return "6-12"
	case tenure <= 24:
		return "12-24"
	case tenure <= 48:
		return "24-48"
	default:
		return "48+"
	}
}

// ServiceCount counts how many of the nine service flags are anything other
// than "No". Values like "No internet service" count as a service, matching
// the training pipeline.
func ServiceCount(rec *model.CustomerRecord) int {
	n := 0
	for _, v := range serviceValues(rec) {
		if v != "No" {
			n++
		}
	}
	return n
}

// IsLongTerm reports whether the contract is anything other than
// month-to-month.
func IsLongTerm(rec *model.CustomerRecord) bool {
	return rec.Contract != "Month-to-month"
}

func serviceValues(rec *model.CustomerRecord) []string {
	return []string{
		rec.PhoneService,
		rec.MultipleLines,
		rec.InternetService,
		rec.OnlineSecurity,
		rec.OnlineBackup,
		rec.DeviceProtection,
		rec.TechSupport,
		rec.StreamingTV,
		rec.StreamingMovies,
	}
}

// categoricals returns every string-valued field that gets one-hot encoded,
// keyed by its column-name prefix. Includes the derived tenure band.
func categoricals(rec *model.CustomerRecord) map[string]string {
	return map[string]string{
		"gender":           rec.Gender,
		"Partner":          rec.Partner,
		"Dependents":       rec.Dependents,
		"PhoneService":     rec.PhoneService,
		"MultipleLines":    rec.MultipleLines,
		"InternetService":  rec.InternetService,
		"OnlineSecurity":   rec.OnlineSecurity,
		"OnlineBackup":     rec.OnlineBackup,
		"DeviceProtection": rec.DeviceProtection,
		"TechSupport":      rec.TechSupport,
		"StreamingTV":      rec.StreamingTV,
		"StreamingMovies":  rec.StreamingMovies,
		"Contract":         rec.Contract,
		"PaperlessBilling": rec.PaperlessBilling,
		"PaymentMethod":    rec.PaymentMethod,
		"tenure_group":     TenureBand(rec.Tenure),
	}
}

// Transform derives the aligned feature vector for rec: impute total
// charges, band tenure, count services, flag long-term contracts, one-hot
// encode categoricals against the artifact's persisted reference categories,
// reindex to the artifact's column list, and scale the numeric columns with
// the stored parameters. Pure given its inputs; the same record always
// yields the same vector.
//
// Total-charges imputation here is MonthlyCharges x tenure; the training
// pipeline filled the column median instead. That asymmetry is inherited
// from the deployed model and kept intact.
func Transform(rec *model.CustomerRecord, art *artifact.Artifact) (Vector, error) {
	if rec == nil {
		return Vector{}, fmt.Errorf("transform: nil record")
	}
	if art == nil {
		return Vector{}, fmt.Errorf("transform: nil artifact")
	}

	total := rec.TotalCharges.Value
	if !rec.TotalCharges.Valid {
		total = rec.MonthlyCharges * float64(rec.Tenure)
	}

	derived := map[string]float64{
		"SeniorCitizen":  float64(rec.SeniorCitizen),
		"tenure":         float64(rec.Tenure),
		"MonthlyCharges": rec.MonthlyCharges,
		"TotalCharges":   total,
		"total_services": float64(ServiceCount(rec)),
	}
	if IsLongTerm(rec) {
		derived["is_long_term"] = 1
	} else {
		derived["is_long_term"] = 0
	}

	// One-hot columns use the pandas get_dummies naming the training job
	// produced: "<field>_<value>". The reference category per field is
	// skipped; any column for a value unseen at training time simply has
	// no slot in feature_cols and drops out during alignment.
	for field, value := range categoricals(rec) {
		if ref, ok := art.ReferenceCategory(field); ok && value == ref {
			continue
		}
		derived[field+"_"+value] = 1
	}

	cols := art.FeatureCols()
	values := make([]float64, len(cols))
	for i, col := range cols {
		v, ok := derived[col]
		if !ok {
			continue // absent indicator columns stay 0
		}
		if scaled, isNumeric := art.Scale(col, v); isNumeric {
			v = scaled
		}
		values[i] = v
	}
	return Vector{cols: cols, values: values}, nil
}
