package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/serverforge/orchestrator/internal/config"
	"github.com/serverforge/orchestrator/internal/job"
	"github.com/serverforge/orchestrator/internal/pipeline"
	"github.com/serverforge/orchestrator/internal/registry"
)

var startTime = time.Now()

type Handlers struct {
	cfg      *config.Config
	store    job.Store
	engine   *pipeline.Engine
	registry registry.Registry
}

func NewHandlers(cfg *config.Config, store job.Store, engine *pipeline.Engine, reg registry.Registry) *Handlers {
	return &Handlers{cfg: cfg, store: store, engine: engine, registry: reg}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":        h.cfg.NodeID,
		"version":        "0.1.0",
		"stages":         pipeline.Stages,
		"uptime_seconds": int(time.Since(startTime).Seconds()),
	})
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	queued, running, complete, failed := h.store.Stats()
	registered := 0
	if servers, err := h.registry.Enumerate(registry.Filter{}); err == nil {
		registered = len(servers)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":        h.cfg.NodeID,
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"jobs": map[string]int{
			"queued":   queued,
			"running":  running,
			"complete": complete,
			"failed":   failed,
		},
		"servers": map[string]int{
			"registered": registered,
		},
	})
}

type SubmitRequest struct {
	Description string `json:"description"`
}

func (h *Handlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rec, err := h.engine.Submit(r.Context(), req.Description)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyDescription) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.store.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	jobs := h.store.List(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"limit": limit,
	})
}

func (h *Handlers) ListServers(w http.ResponseWriter, r *http.Request) {
	filter := registry.Filter{
		Name:    r.URL.Query().Get("name"),
		Version: r.URL.Query().Get("version"),
	}
	servers, err := h.registry.Enumerate(filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"servers": servers,
		"total":   len(servers),
	})
}

func (h *Handlers) GetServer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := r.URL.Query().Get("version")

	rec, err := h.registry.Find(name, version)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "server not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) DeleteServer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := h.registry.Remove(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "server not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
