package model

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat_Unmarshal(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantValid bool
		wantValue float64
	}{
		{"number", `{"v": 1397.47}`, true, 1397.47},
		{"numeric string", `{"v": "1397.47"}`, true, 1397.47},
		{"blank string", `{"v": ""}`, false, 0},
		{"whitespace string", `{"v": " "}`, false, 0},
		{"null", `{"v": null}`, false, 0},
		{"absent", `{}`, false, 0},
		{"garbage string", `{"v": "n/a"}`, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload struct {
				V FlexFloat `json:"v"`
			}
			if err := json.Unmarshal([]byte(tc.in), &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if payload.V.Valid != tc.wantValid {
				t.Fatalf("valid = %v, want %v", payload.V.Valid, tc.wantValid)
			}
			if tc.wantValid && payload.V.Value != tc.wantValue {
				t.Fatalf("value = %v, want %v", payload.V.Value, tc.wantValue)
			}
		})
	}
}

func TestCustomerRecord_BindsTelcoPayload(t *testing.T) {
	body := `{
		"customerID": "7590-VHVEG",
		"gender": "Female",
		"SeniorCitizen": 0,
		"Partner": "Yes",
		"Dependents": "No",
		"tenure": 1,
		"PhoneService": "No",
		"MultipleLines": "No phone service",
		"InternetService": "DSL",
		"OnlineSecurity": "No",
		"OnlineBackup": "Yes",
		"DeviceProtection": "No",
		"TechSupport": "No",
		"StreamingTV": "No",
		"StreamingMovies": "No",
		"Contract": "Month-to-month",
		"PaperlessBilling": "Yes",
		"PaymentMethod": "Electronic check",
		"MonthlyCharges": 29.85,
		"TotalCharges": "29.85"
	}`
	var rec CustomerRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.CustomerID != "7590-VHVEG" || rec.Tenure != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.TotalCharges.Valid || rec.TotalCharges.Value != 29.85 {
		t.Fatalf("total charges = %+v, want valid 29.85", rec.TotalCharges)
	}
}
