package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/serverforge/orchestrator/internal/registry"
)

func TestListServers_AfterPipelineRun(t *testing.T) {
	stack := newTestStack(t)

	stack.do("POST", "/api/jobs", `{"description":"weather lookup tool"}`)
	stack.engine.Wait()

	rec := stack.do("GET", "/api/servers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Servers []registry.Record `json:"servers"`
		Total   int               `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Fatalf("expected 1 server, got %d", resp.Total)
	}
	if resp.Servers[0].Name != "weather-lookup-tool" {
		t.Errorf("unexpected server name: %s", resp.Servers[0].Name)
	}
}

func TestGetServer(t *testing.T) {
	stack := newTestStack(t)
	stack.registry.RegisterOrUpdate(&registry.Record{Name: "weather-lookup", Version: "0.1.0"})

	rec := stack.do("GET", "/api/servers/weather-lookup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = stack.do("GET", "/api/servers/weather-lookup?version=9.9.9", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for version mismatch, got %d", rec.Code)
	}

	rec = stack.do("GET", "/api/servers/nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestListServers_Filter(t *testing.T) {
	stack := newTestStack(t)
	stack.registry.RegisterOrUpdate(&registry.Record{Name: "weather-lookup", Version: "0.1.0"})
	stack.registry.RegisterOrUpdate(&registry.Record{Name: "time-server", Version: "0.1.0"})

	rec := stack.do("GET", "/api/servers?name=weather", "")

	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected 1 filtered server, got %d", resp.Total)
	}
}

func TestDeleteServer(t *testing.T) {
	stack := newTestStack(t)
	stack.registry.RegisterOrUpdate(&registry.Record{Name: "weather-lookup", Version: "0.1.0"})

	rec := stack.do("DELETE", "/api/servers/weather-lookup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = stack.do("DELETE", "/api/servers/weather-lookup", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for second delete, got %d", rec.Code)
	}
}
