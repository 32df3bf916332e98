package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/churnlab/churnd/internal/model"
	"github.com/churnlab/churnd/internal/service"
)

type fakeScorer struct {
	result service.ScoreResult
	err    error
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, rec *model.CustomerRecord) (service.ScoreResult, error) {
	f.calls++
	if f.err != nil {
		return service.ScoreResult{}, f.err
	}
	res := f.result
	res.CustomerID = rec.CustomerID
	return res, nil
}

type fakeLister struct {
	gotLimit int
	items    []model.PredictionRecord
	err      error
}

func (f *fakeLister) ListRecent(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	f.gotLimit = limit
	return f.items, f.err
}

type fakeStats struct {
	stats model.ChurnStats
	err   error
}

func (f *fakeStats) ChurnStats(ctx context.Context) (model.ChurnStats, error) {
	return f.stats, f.err
}

func newHandler(scorer *fakeScorer, lister *fakeLister, stats *fakeStats) *ChurnHandler {
	return &ChurnHandler{
		Scorer:      scorer,
		Predictions: lister,
		Stats:       stats,
		Validate:    validator.New(),
		Log:         zerolog.Nop(),
	}
}

func doRequest(h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

const validBody = `{
	"customerID": "9999-TEST",
	"gender": "Male",
	"SeniorCitizen": 0,
	"Partner": "No",
	"Dependents": "No",
	"tenure": 1,
	"PhoneService": "Yes",
	"MultipleLines": "No",
	"InternetService": "No",
	"OnlineSecurity": "No",
	"OnlineBackup": "No",
	"DeviceProtection": "No",
	"TechSupport": "No",
	"StreamingTV": "No",
	"StreamingMovies": "No",
	"Contract": "Month-to-month",
	"PaperlessBilling": "No",
	"PaymentMethod": "Mailed check",
	"MonthlyCharges": 70.0
}`

func TestHealth(t *testing.T) {
	h := newHandler(&fakeScorer{}, &fakeLister{}, &fakeStats{})
	rec := doRequest(h.Health, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q", body["status"])
	}
}

func TestPredictChurn_OK(t *testing.T) {
	scorer := &fakeScorer{result: service.ScoreResult{Probability: 0.71, RiskLabel: model.RiskHigh}}
	h := newHandler(scorer, &fakeLister{}, &fakeStats{})

	req := httptest.NewRequest(http.MethodPost, "/predict_churn", strings.NewReader(validBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(h.PredictChurn, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res service.ScoreResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.CustomerID != "9999-TEST" || res.RiskLabel != model.RiskHigh || res.Probability != 0.71 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestPredictChurn_ValidationFailure(t *testing.T) {
	scorer := &fakeScorer{}
	h := newHandler(scorer, &fakeLister{}, &fakeStats{})

	// Contract missing entirely.
	body := strings.Replace(validBody, `"Contract": "Month-to-month",`, "", 1)
	req := httptest.NewRequest(http.MethodPost, "/predict_churn", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(h.PredictChurn, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if scorer.calls != 0 {
		t.Fatal("invalid record must not reach the scorer")
	}
}

func TestPredictChurn_OutOfDomainSeniorCitizen(t *testing.T) {
	h := newHandler(&fakeScorer{}, &fakeLister{}, &fakeStats{})
	body := strings.Replace(validBody, `"SeniorCitizen": 0`, `"SeniorCitizen": 3`, 1)
	req := httptest.NewRequest(http.MethodPost, "/predict_churn", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(h.PredictChurn, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestPredictChurn_MalformedBody(t *testing.T) {
	h := newHandler(&fakeScorer{}, &fakeLister{}, &fakeStats{})
	req := httptest.NewRequest(http.MethodPost, "/predict_churn", strings.NewReader("{nope"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(h.PredictChurn, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPredictChurn_TransformError(t *testing.T) {
	scorer := &fakeScorer{err: &service.TransformError{Err: errors.New("dimension mismatch")}}
	h := newHandler(scorer, &fakeLister{}, &fakeStats{})
	req := httptest.NewRequest(http.MethodPost, "/predict_churn", strings.NewReader(validBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(h.PredictChurn, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestListPredictions(t *testing.T) {
	lister := &fakeLister{items: []model.PredictionRecord{
		{ID: 2, CustomerID: "b", Probability: 0.9, RiskLabel: model.RiskHigh, PredictedAt: time.Now()},
		{ID: 1, CustomerID: "a", Probability: 0.1, RiskLabel: model.RiskLow, PredictedAt: time.Now()},
	}}
	h := newHandler(&fakeScorer{}, lister, &fakeStats{})

	rec := doRequest(h.ListPredictions, httptest.NewRequest(http.MethodGet, "/predictions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if lister.gotLimit != defaultHistoryLimit {
		t.Fatalf("default limit = %d, want %d", lister.gotLimit, defaultHistoryLimit)
	}

	rec = doRequest(h.ListPredictions, httptest.NewRequest(http.MethodGet, "/predictions?limit=5", nil))
	if rec.Code != http.StatusOK || lister.gotLimit != 5 {
		t.Fatalf("status = %d, limit = %d", rec.Code, lister.gotLimit)
	}

	rec = doRequest(h.ListPredictions, httptest.NewRequest(http.MethodGet, "/predictions?limit=100000", nil))
	if lister.gotLimit != maxHistoryLimit {
		t.Fatalf("oversized limit passed through as %d", lister.gotLimit)
	}

	rec = doRequest(h.ListPredictions, httptest.NewRequest(http.MethodGet, "/predictions?limit=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChurnStats(t *testing.T) {
	stats := &fakeStats{stats: model.ChurnStats{
		TotalCustomers:   7043,
		ChurnRateOverall: 0.2654,
		ByContract: []model.ContractChurnRate{
			{Contract: "Month-to-month", ChurnRate: 0.427},
		},
	}}
	h := newHandler(&fakeScorer{}, &fakeLister{}, stats)

	rec := doRequest(h.ChurnStats, httptest.NewRequest(http.MethodGet, "/stats/churn", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got model.ChurnStats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalCustomers != 7043 || len(got.ByContract) != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestChurnStats_Error(t *testing.T) {
	h := newHandler(&fakeScorer{}, &fakeLister{}, &fakeStats{err: errors.New("relation does not exist")})
	rec := doRequest(h.ChurnStats, httptest.NewRequest(http.MethodGet, "/stats/churn", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
