package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/table"

	"github.com/gorilla/websocket"
)

func testResults(t *testing.T) (config.ResultsConfig, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "api-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return config.ResultsConfig{
		AlertsPath:   filepath.Join(dir, "alerts.csv"),
		BlockingPath: filepath.Join(dir, "blocking.csv"),
		ReportPath:   filepath.Join(dir, "report.txt"),
	}, dir
}

func seedAlerts(t *testing.T, path string) {
	t.Helper()
	alerts := []model.AlertRecord{
		{WorkerRank: 0, AttackFlag: 1, GlobalAttack: 1, TotalPackets: 100, ProcessingTimeMS: 10, MemoryUsedKB: 512, EntropyDetected: 1},
		{WorkerRank: 1, AttackFlag: 0, GlobalAttack: 0, TotalPackets: 200, ProcessingTimeMS: 20, MemoryUsedKB: 256, CusumDetected: 1},
	}
	if err := table.AppendAlerts(path, alerts); err != nil {
		t.Fatalf("Failed to seed alerts: %v", err)
	}
}

func TestServerReportBeforeRefresh(t *testing.T) {
	results, _ := testResults(t)
	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	// 1. Without any refresh the report endpoints must signal unavailability.
	for _, path := range []string{"/api/v1/report", "/api/v1/report/text"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s before refresh: got status %d, want %d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestServerRefreshAndReport(t *testing.T) {
	results, _ := testResults(t)
	seedAlerts(t, results.AlertsPath)

	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	// 1. Refresh loads the result tables and aggregates them.
	if err := srv.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// 2. The JSON endpoint serves the aggregated report.
	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/report: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var rep model.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if rep.TotalAlerts != 2 {
		t.Errorf("TotalAlerts = %d, want 2", rep.TotalAlerts)
	}
	if rep.Workers != 2 {
		t.Errorf("Workers = %d, want 2", rep.Workers)
	}
	if rep.Blocking != nil {
		t.Errorf("Blocking should be nil when no blocking log exists")
	}

	// 3. The text endpoint renders the full report.
	req = httptest.NewRequest("GET", "/api/v1/report/text", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/report/text: got status %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "DDoS DETECTION SYSTEM - PERFORMANCE ANALYSIS REPORT") {
		t.Errorf("Text report missing title, got:\n%s", body)
	}
	if !strings.Contains(body, "No blocking data available") {
		t.Errorf("Text report should note the missing blocking data")
	}
}

func TestServerRefreshMissingAlerts(t *testing.T) {
	results, _ := testResults(t)
	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Refresh(); err == nil {
		t.Fatal("Refresh should fail when the alerts log does not exist")
	}
}

func TestServerHealthz(t *testing.T) {
	results, _ := testResults(t)
	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if status["status"] != "ok" {
		t.Errorf("status = %q, want ok", status["status"])
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	results, _ := testResults(t)
	seedAlerts(t, results.AlertsPath)
	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "flowlens_report_refreshes_total") {
		t.Errorf("Metrics output missing refresh counter")
	}
}

func TestServerWebSocketInitialPush(t *testing.T) {
	results, _ := testResults(t)
	seedAlerts(t, results.AlertsPath)
	srv, err := NewServer(results)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// 1. Start an HTTP server and dial the websocket endpoint.
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// 2. A freshly connected client receives the current report at once.
	var rep model.Report
	if err := conn.ReadJSON(&rep); err != nil {
		t.Fatalf("Failed to read initial report: %v", err)
	}
	if rep.TotalAlerts != 2 {
		t.Errorf("Initial push TotalAlerts = %d, want 2", rep.TotalAlerts)
	}
}
