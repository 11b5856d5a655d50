package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketbrief/internal/model"
	"github.com/marketbrief/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	cases := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()
			Health(fakePinger{err: tc.pingErr}).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["status"] != tc.wantBody {
				t.Errorf("status field = %q, want %q", body["status"], tc.wantBody)
			}
		})
	}
}

type fakeRunner struct {
	result *model.RunResult
	err    error
}

func (f *fakeRunner) Run(ctx context.Context) (*model.RunResult, error) {
	return f.result, f.err
}

func TestTriggerSuccess(t *testing.T) {
	h := NewResearchHandler(testLogger(), &fakeRunner{
		result: &model.RunResult{ReportID: "r1", EmailSent: true, SlackSent: false},
	}, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/research/run", nil)
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success   bool   `json:"success"`
		Timestamp string `json:"timestamp"`
		ReportID  string `json:"report_id"`
		EmailSent bool   `json:"email_sent"`
		SlackSent bool   `json:"slack_sent"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || !body.EmailSent || body.SlackSent {
		t.Errorf("unexpected flags %+v", body)
	}
	if body.ReportID != "r1" {
		t.Errorf("report_id = %q", body.ReportID)
	}
	if body.Message != "Market research completed successfully" {
		t.Errorf("message = %q", body.Message)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", body.Timestamp, err)
	}
}

func TestTriggerFailure(t *testing.T) {
	h := NewResearchHandler(testLogger(), &fakeRunner{err: errors.New("all models failed")}, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/research/run", nil)
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if !strings.Contains(body.Error, "all models failed") {
		t.Errorf("error = %q", body.Error)
	}
}

type fakeReports struct {
	reports []model.Report
	listErr error
}

func (f *fakeReports) ListReports(ctx context.Context, limit int) ([]model.Report, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.reports) > limit {
		return f.reports[:limit], nil
	}
	return f.reports, nil
}

func (f *fakeReports) GetReport(ctx context.Context, id string) (*model.Report, error) {
	for _, r := range f.reports {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func TestReportsList(t *testing.T) {
	h := NewReportsHandler(testLogger(), &fakeReports{reports: []model.Report{
		{ID: "r1", Subject: "Morning Briefing", CreatedAt: time.Now().Add(-2 * time.Hour)},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Reports []struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			Age     string `json:"age"`
		} `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(body.Reports))
	}
	if body.Reports[0].ID != "r1" || body.Reports[0].Subject != "Morning Briefing" {
		t.Errorf("unexpected report %+v", body.Reports[0])
	}
	if !strings.Contains(body.Reports[0].Age, "hour") {
		t.Errorf("age = %q, want a relative time", body.Reports[0].Age)
	}
}

func TestReportsGet(t *testing.T) {
	h := NewReportsHandler(testLogger(), &fakeReports{reports: []model.Report{
		{ID: "r1", HTML: "<html>the report</html>"},
	}})

	router := chi.NewRouter()
	router.Get("/api/reports/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/r1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != "<html>the report</html>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestReportsGetNotFound(t *testing.T) {
	h := NewReportsHandler(testLogger(), &fakeReports{})

	router := chi.NewRouter()
	router.Get("/api/reports/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
