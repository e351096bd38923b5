package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tphummel/equipment_tracker/internal/middleware"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestRequestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}

	for _, key := range []string{"method", "path", "status", "duration", "remote_addr"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("log entry missing key %q", key)
		}
	}
	if entry["method"] != http.MethodGet {
		t.Errorf("method: got %v, want %v", entry["method"], http.MethodGet)
	}
	if entry["path"] != "/api/equipment" {
		t.Errorf("path: got %v, want %v", entry["path"], "/api/equipment")
	}
	if int(entry["status"].(float64)) != http.StatusOK {
		t.Errorf("status: got %v, want %d", entry["status"], http.StatusOK)
	}
}

func TestRequestLogger_SkipsHealthcheck(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	skip := func(r *http.Request) bool { return r.URL.Path == "/healthz" }
	handler := middleware.RequestLogger(logger, skip, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if buf.Len() > 0 {
		t.Errorf("expected no log output for healthcheck, got: %s", buf.String())
	}
}

func TestRequestLogger_LogsNonSkippedPaths(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	skip := func(r *http.Request) bool { return r.URL.Path == "/healthz" }
	handler := middleware.RequestLogger(logger, skip, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if buf.Len() == 0 {
		t.Error("expected log output for non-skipped path, got none")
	}
}

func TestRequestLogger_CapturesNonOKStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if int(entry["status"].(float64)) != http.StatusNotFound {
		t.Errorf("status: got %v, want %d", entry["status"], http.StatusNotFound)
	}
}

func TestRequestLogger_DefaultsTo200(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	// Handler writes body without calling WriteHeader; status should default to 200.
	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello")) //nolint:errcheck
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if int(entry["status"].(float64)) != http.StatusOK {
		t.Errorf("status: got %v, want 200", entry["status"])
	}
}

func TestRequestLogger_NilSkip(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	// nil skip function should log all requests, including healthcheck path.
	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if buf.Len() == 0 {
		t.Error("expected log output when skip is nil, got none")
	}
}

func TestRequestLogger_ServerErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/equipment", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
}

func TestRequestLogger_IncludesQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/equipment?type=Tank", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["query"] != "type=Tank" {
		t.Errorf("query: got %v, want type=Tank", entry["query"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level: got %v, want INFO", entry["level"])
	}
}

func TestRequestLogger_IncludesRouteAndEquipmentID(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/equipment/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.RequestLogger(logger, nil, mux)

	req := httptest.NewRequest(http.MethodDelete, "/api/equipment/abc-123", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["route"] != "DELETE /api/equipment/{id}" {
		t.Errorf("route: got %v", entry["route"])
	}
	if entry["equipment_id"] != "abc-123" {
		t.Errorf("equipment_id: got %v, want abc-123", entry["equipment_id"])
	}
	if int(entry["status"].(float64)) != http.StatusNoContent {
		t.Errorf("status: got %v, want 204", entry["status"])
	}
}

func TestRequestLogger_NoRouteWithoutMux(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := middleware.RequestLogger(logger, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/equipment/1", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	for _, key := range []string{"route", "equipment_id"} {
		if _, ok := entry[key]; ok {
			t.Errorf("unexpected key %q without a mux", key)
		}
	}
}
