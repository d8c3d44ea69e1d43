package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/serverforge/orchestrator/internal/job"
)

// Server streams job record snapshots to watchers. Clients connect to
// /ws/jobs/{id} and receive the current snapshot plus every persisted
// transition until the job reaches a terminal state.
type Server struct {
	store job.Store

	mu       sync.Mutex
	watchers map[string]map[chan *job.Record]struct{}
}

func NewServer(store job.Store) *Server {
	return &Server{
		store:    store,
		watchers: make(map[string]map[chan *job.Record]struct{}),
	}
}

// Notify fans a snapshot out to this job's watchers. Wired as the
// engine's observer. Slow watchers drop intermediate snapshots rather
// than block the pipeline.
func (s *Server) Notify(rec *job.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers[rec.ID] {
		select {
		case ch <- rec:
		default:
		}
	}
}

func (s *Server) watch(id string) (chan *job.Record, func()) {
	ch := make(chan *job.Record, 16)

	s.mu.Lock()
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[chan *job.Record]struct{})
	}
	s.watchers[id][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers[id], ch)
		if len(s.watchers[id]) == 0 {
			delete(s.watchers, id)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Server) HandleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.Get(id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	ctx := r.Context()

	// Subscribe before sending the initial snapshot so no transition in
	// between is lost.
	ch, cancel := s.watch(id)
	defer cancel()

	if err := wsjson.Write(ctx, conn, rec); err != nil {
		return
	}
	if rec.Terminal() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-ch:
			if err := wsjson.Write(ctx, conn, update); err != nil {
				return
			}
			if update.Terminal() {
				return
			}
		}
	}
}
