package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/serverforge/orchestrator/internal/config"
	"github.com/serverforge/orchestrator/internal/job"
	"github.com/serverforge/orchestrator/internal/pipeline"
	"github.com/serverforge/orchestrator/internal/registry"
	"github.com/serverforge/orchestrator/internal/ws"
)

func NewRouter(cfg *config.Config, store job.Store, engine *pipeline.Engine, reg registry.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	wsServer := ws.NewServer(store)
	engine.SetObserver(wsServer.Notify)

	h := NewHandlers(cfg, store, engine, reg)

	// Health & Info
	r.Get("/health", h.Health)
	r.Get("/info", h.Info)
	r.Get("/stats", h.Stats)

	// Jobs API
	r.Post("/api/jobs", h.SubmitJob)
	r.Get("/api/jobs/{id}", h.GetJob)
	r.Get("/api/jobs", h.ListJobs)

	// Registry API
	r.Get("/api/servers", h.ListServers)
	r.Get("/api/servers/{name}", h.GetServer)
	r.Delete("/api/servers/{name}", h.DeleteServer)

	// Live job progress
	r.Get("/ws/jobs/{id}", wsServer.HandleJob)

	return r
}
