package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpointNoAuth(t *testing.T) {
	resp, err := http.Get(testEnv.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", resp.StatusCode)
	}

	var health map[string]string
	decodeJSON(t, resp, &health)
	if health["status"] != "healthy" || health["service"] != "strom" {
		t.Errorf("health = %v", health)
	}
}

func TestRootInfo(t *testing.T) {
	resp, err := http.Get(testEnv.BaseURL() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var info struct {
		Endpoints int      `json:"endpoints"`
		Streams   []string `json:"streams"`
	}
	decodeJSON(t, resp, &info)
	if info.Endpoints != 10 {
		t.Errorf("endpoints = %d, want 10", info.Endpoints)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	readBody(t, postStream(t, testEnv, "logs", map[string]any{"lines": 1}))

	resp, err := http.Get(testEnv.BaseURL() + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := readBody(t, resp)

	for _, want := range []string{
		`strom_streams_total{kind="logs",outcome="completed"}`,
		"strom_requests_total",
		"strom_stream_chunks_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
