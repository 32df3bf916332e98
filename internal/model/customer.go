package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a possibly-missing numeric field. Upstream exports carry
// the total-charges column as a number, a numeric string, or a blank string
// for customers with no billing history yet; all of those must bind without
// failing the request.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Valid = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			f.Valid = false
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f.Valid = false
			return nil
		}
		f.Value = v
		f.Valid = true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.Valid = true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// CustomerRecord is the raw customer payload accepted by the predict
// endpoint. Field names follow the Telco export the model was trained on.
// Categorical fields are deliberately not restricted to a closed set:
// unseen values are handled downstream by schema alignment.
type CustomerRecord struct {
	CustomerID       string    `json:"customerID" validate:"required"`
	Gender           string    `json:"gender" validate:"required"`
	SeniorCitizen    int       `json:"SeniorCitizen" validate:"oneof=0 1"`
	Partner          string    `json:"Partner" validate:"required"`
	Dependents       string    `json:"Dependents" validate:"required"`
	Tenure           int       `json:"tenure" validate:"gte=0"`
	PhoneService     string    `json:"PhoneService" validate:"required"`
	MultipleLines    string    `json:"MultipleLines" validate:"required"`
	InternetService  string    `json:"InternetService" validate:"required"`
	OnlineSecurity   string    `json:"OnlineSecurity" validate:"required"`
	OnlineBackup     string    `json:"OnlineBackup" validate:"required"`
	DeviceProtection string    `json:"DeviceProtection" validate:"required"`
	TechSupport      string    `json:"TechSupport" validate:"required"`
	StreamingTV      string    `json:"StreamingTV" validate:"required"`
	StreamingMovies  string    `json:"StreamingMovies" validate:"required"`
	Contract         string    `json:"Contract" validate:"required"`
	PaperlessBilling string    `json:"PaperlessBilling" validate:"required"`
	PaymentMethod    string    `json:"PaymentMethod" validate:"required"`
	MonthlyCharges   float64   `json:"MonthlyCharges" validate:"gte=0"`
	TotalCharges     FlexFloat `json:"TotalCharges"`
}
