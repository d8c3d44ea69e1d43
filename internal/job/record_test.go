package job

import (
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	r := New("weather lookup tool", "interpret")

	if r.ID == "" {
		t.Error("expected job ID")
	}
	if r.Status != StatusQueued {
		t.Errorf("expected queued, got %s", r.Status)
	}
	if r.CurrentStage != "interpret" {
		t.Errorf("expected interpret, got %s", r.CurrentStage)
	}
	if len(r.StagesCompleted) != 0 {
		t.Errorf("expected no completed stages, got %v", r.StagesCompleted)
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected created_at")
	}
}

func TestNewID_Sortable(t *testing.T) {
	a := NewID()
	time.Sleep(1100 * time.Millisecond)
	b := NewID()

	if !(a < b) {
		t.Errorf("expected %s < %s", a, b)
	}
}

func TestRecord_Clone(t *testing.T) {
	r := New("desc", "interpret")
	r.StagesCompleted = []string{"interpret"}
	r.Result = &Result{Name: "weather", Tools: []string{"get_forecast"}}

	c := r.Clone()
	c.StagesCompleted = append(c.StagesCompleted, "generate")
	c.Result.Tools[0] = "changed"
	c.Result.Name = "other"

	if len(r.StagesCompleted) != 1 {
		t.Errorf("clone mutated original stages: %v", r.StagesCompleted)
	}
	if r.Result.Tools[0] != "get_forecast" {
		t.Errorf("clone mutated original tools: %v", r.Result.Tools)
	}
	if r.Result.Name != "weather" {
		t.Errorf("clone mutated original result: %s", r.Result.Name)
	}
}

func TestRecord_Terminal(t *testing.T) {
	r := New("desc", "interpret")
	if r.Terminal() {
		t.Error("queued record should not be terminal")
	}
	r.Status = StatusFailed
	if !r.Terminal() {
		t.Error("failed record should be terminal")
	}
}
