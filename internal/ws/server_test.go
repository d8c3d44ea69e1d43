package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/serverforge/orchestrator/internal/job"
)

func newWatchServer(t *testing.T) (*Server, *job.MemoryStore, string) {
	t.Helper()

	store := job.NewMemoryStore()
	server := NewServer(store)

	r := chi.NewRouter()
	r.Get("/ws/jobs/{id}", server.HandleJob)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return server, store, "ws" + ts.URL[len("http"):]
}

func TestHandleJob_UnknownJob(t *testing.T) {
	_, _, wsURL := newWatchServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL+"/ws/jobs/nonexistent", nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown job")
	}
	if resp != nil && resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleJob_StreamsUntilTerminal(t *testing.T) {
	server, store, wsURL := newWatchServer(t)

	rec := job.New("weather lookup tool", "interpret")
	store.Create(rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL+"/ws/jobs/"+rec.ID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first job.Record
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.Status != job.StatusQueued {
		t.Errorf("expected queued snapshot, got %s", first.Status)
	}

	running := rec.Clone()
	running.Status = job.StatusRunning
	running.CurrentStage = "generate"
	server.Notify(running)

	var second job.Record
	if err := wsjson.Read(ctx, conn, &second); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if second.CurrentStage != "generate" {
		t.Errorf("expected generate, got %s", second.CurrentStage)
	}

	now := time.Now().UTC()
	done := running.Clone()
	done.Status = job.StatusComplete
	done.CurrentStage = job.StageDone
	done.CompletedAt = &now
	server.Notify(done)

	var last job.Record
	if err := wsjson.Read(ctx, conn, &last); err != nil {
		t.Fatalf("read terminal snapshot: %v", err)
	}
	if last.Status != job.StatusComplete {
		t.Errorf("expected complete, got %s", last.Status)
	}

	// Server closes after the terminal snapshot.
	var extra job.Record
	if err := wsjson.Read(ctx, conn, &extra); err == nil {
		t.Error("expected connection closed after terminal state")
	}
}

func TestHandleJob_TerminalJobClosesImmediately(t *testing.T) {
	_, store, wsURL := newWatchServer(t)

	now := time.Now().UTC()
	rec := job.New("done already", "interpret")
	rec.Status = job.StatusFailed
	rec.FailedAt = &now
	rec.Errors = []string{"interpret description: no keywords"}
	store.Create(rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL+"/ws/jobs/"+rec.ID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var snapshot job.Record
	if err := wsjson.Read(ctx, conn, &snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Status != job.StatusFailed {
		t.Errorf("expected failed, got %s", snapshot.Status)
	}

	var extra job.Record
	if err := wsjson.Read(ctx, conn, &extra); err == nil {
		t.Error("expected connection closed for terminal job")
	}
}
