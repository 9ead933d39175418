package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NavPulse/internal/allocator"
	"NavPulse/internal/domain/models"
	"NavPulse/internal/indicator"
	"NavPulse/internal/usecase"

	"github.com/labstack/echo/v4"
)

type stubStore struct {
	m map[string]models.NavSeries
}

func (s *stubStore) Load(id string) (models.NavSeries, error) {
	return append(models.NavSeries(nil), s.m[id]...), nil
}

func (s *stubStore) Save(id string, series models.NavSeries) error {
	s.m[id] = series
	return nil
}

type stubSource struct{}

func (stubSource) Fetch(context.Context, string, time.Time) ([]models.NavPoint, error) {
	return nil, nil
}

func seededSeries(n int, start, step float64) models.NavSeries {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.NavSeries, n)
	for i := 0; i < n; i++ {
		s[i] = models.NavPoint{Date: base.AddDate(0, 0, i), Value: start + step*float64(i)}
	}
	return s
}

func newTestHandler(t *testing.T) (*MonitorHandler, *echo.Echo) {
	t.Helper()
	store := &stubStore{m: map[string]models.NavSeries{
		"F001": seededSeries(40, 1.0, 0.01),
		"F002": seededSeries(40, 2.0, -0.005),
	}}
	sched := usecase.NewScheduler(store, stubSource{}, indicator.New())
	mon := usecase.NewMonitor(sched, allocator.New(10000, 3), []string{"F001", "F002"})
	h := NewMonitorHandler(nil, mon, nil, nil)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResultsBeforeFirstRun(t *testing.T) {
	_, e := newTestHandler(t)
	rec := do(e, http.MethodGet, "/api/results")

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusNotFound {
		t.Fatalf("expected 404 payload before first run, got %d", body.Status)
	}
}

func TestRunThenResults(t *testing.T) {
	_, e := newTestHandler(t)

	rec := do(e, http.MethodPost, "/api/run")
	var runBody struct {
		Status int                `json:"status"`
		Data   models.BatchReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &runBody); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if runBody.Status != http.StatusOK || len(runBody.Data.Results) != 2 {
		t.Fatalf("unexpected run response: %+v", runBody)
	}

	rec = do(e, http.MethodGet, "/api/results?sort=fund")
	var listBody struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.Result `json:"rows"`
			Total int64           `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if listBody.Data.Total != 2 || listBody.Data.Rows[0].FundID != "F001" {
		t.Fatalf("unexpected results payload: %+v", listBody.Data)
	}

	rec = do(e, http.MethodGet, "/api/trend")
	if rec.Code != http.StatusOK {
		t.Fatalf("trend after run should be served, got %d", rec.Code)
	}
}

func TestResultsRejectsBadSort(t *testing.T) {
	_, e := newTestHandler(t)
	rec := do(e, http.MethodGet, "/api/results?sort=bogus")

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 payload for bad sort key, got %d", body.Status)
	}
}

func TestSortResults(t *testing.T) {
	mk := func(id string, rsi float64, defined bool) models.Result {
		r := models.Result{FundID: id}
		if defined {
			r.RSI = models.Def(rsi)
		}
		return r
	}
	results := []models.Result{mk("C", 0, false), mk("A", 70, true), mk("B", 30, true)}

	sortResults(results, "rsi")
	if results[0].FundID != "B" || results[2].FundID != "C" {
		t.Fatalf("rsi sort wrong: %v %v %v", results[0].FundID, results[1].FundID, results[2].FundID)
	}

	sortResults(results, "fund")
	if results[0].FundID != "A" || results[2].FundID != "C" {
		t.Fatalf("fund sort wrong: %v %v %v", results[0].FundID, results[1].FundID, results[2].FundID)
	}
}
