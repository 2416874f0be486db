package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_Healthy(t *testing.T) {
	e, _, closeUpstream := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("upstream path = %q, want /health", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"emailmcp"}`))
	})
	defer closeUpstream()

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Status   string          `json:"status"`
		Backend  string          `json:"backend"`
		EmailMCP json.RawMessage `json:"emailmcp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status = %q, want %q", body.Status, "healthy")
	}
	if body.Backend != "ok" {
		t.Errorf("backend = %q, want %q", body.Backend, "ok")
	}
	if string(body.EmailMCP) != `{"status":"healthy","service":"emailmcp"}` {
		t.Errorf("emailmcp = %s, want the upstream body wrapped verbatim", body.EmailMCP)
	}
}

func TestHealth_UpstreamErrorStatus(t *testing.T) {
	e, _, closeUpstream := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"database down"}`))
	})
	defer closeUpstream()

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("status = %v, want %q", body["status"], "unhealthy")
	}
	if body["backend"] != "ok" {
		t.Errorf("backend = %v, want %q", body["backend"], "ok")
	}
	if body["emailmcp"] != "unreachable" {
		t.Errorf("emailmcp = %v, want %q", body["emailmcp"], "unreachable")
	}
	if body["error"] != "database down" {
		t.Errorf("error = %v, want %q", body["error"], "database down")
	}
}

func TestHealth_UpstreamUnreachable(t *testing.T) {
	e := newTestGatewayForURL(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("status = %v, want %q", body["status"], "unhealthy")
	}
	if body["emailmcp"] != "unreachable" {
		t.Errorf("emailmcp = %v, want %q", body["emailmcp"], "unreachable")
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("error message missing from unhealthy response")
	}
}
