package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	t.Cleanup(func() { runner.Close() })
	return NewServer(runner, logger)
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		var resp APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid JSON: %v", path, err)
		}
		if !resp.Success {
			t.Errorf("%s: Success = false", path)
		}
	}
}

func TestHandleCharts(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/charts", ChartRequest{
		Options: pipeline.Options{
			Observations: []pie.Observation{
				{Category: "a", Value: 2},
				{Category: "b", Value: 6},
			},
			Formats: []string{"svg"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    ChartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success {
		t.Fatal("Success = false")
	}
	if len(resp.Data.Shares) != 2 {
		t.Errorf("len(Shares) = %d, want 2", len(resp.Data.Shares))
	}
	if resp.Data.Shares[1].Percent != 75 {
		t.Errorf("Shares[1].Percent = %v, want 75", resp.Data.Shares[1].Percent)
	}
	svg, ok := resp.Data.Artifacts["svg"]
	if !ok {
		t.Fatal("missing svg artifact")
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg artifact should contain an <svg> element")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
}

func TestHandleChartsValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{
			"empty body",
			map[string]interface{}{},
			http.StatusBadRequest,
		},
		{
			"file source rejected",
			pipeline.Options{
				Observations: []pie.Observation{{Category: "a", Value: 1}},
				Input:        "/etc/passwd",
			},
			http.StatusBadRequest,
		},
		{
			"zero total",
			pipeline.Options{
				Observations: []pie.Observation{{Category: "a", Value: 0}},
			},
			http.StatusBadRequest,
		},
		{
			"negative value",
			pipeline.Options{
				Observations: []pie.Observation{{Category: "a", Value: -2}},
			},
			http.StatusBadRequest,
		},
		{
			"bad format",
			pipeline.Options{
				Observations: []pie.Observation{{Category: "a", Value: 1}},
				Formats:      []string{"gif"},
			},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		rec := postJSON(t, srv, "/v1/charts", tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
		var resp APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid JSON: %v", tt.name, err)
		}
		if resp.Success {
			t.Errorf("%s: Success should be false", tt.name)
		}
		if resp.Code == "" {
			t.Errorf("%s: error code should be set", tt.name)
		}
	}
}

func TestHandleChartArtifact(t *testing.T) {
	srv := newTestServer(t)

	body := pipeline.Options{
		Observations: []pie.Observation{
			{Category: "a", Value: 1},
			{Category: "b", Value: 1},
		},
	}

	rec := postJSON(t, srv, "/v1/charts/svg", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want %q", got, "image/svg+xml")
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body should be a raw SVG document")
	}

	rec = postJSON(t, srv, "/v1/charts/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("json: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("json: Content-Type = %q, want %q", got, "application/json")
	}

	rec = postJSON(t, srv, "/v1/charts/gif", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("gif: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-supplied")
	}
}
