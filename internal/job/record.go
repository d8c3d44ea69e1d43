package job

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// StageDone is the CurrentStage value once every pipeline stage has finished.
const StageDone = "done"

// Result is the payload of a completed job. Warnings carry non-fatal
// compliance issues forward into the success payload.
type Result struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	ArtifactPath string   `json:"artifact_path"`
	PackagePath  string   `json:"package_path,omitempty"`
	ImageRef     string   `json:"image_ref,omitempty"`
	Revision     string   `json:"revision,omitempty"`
	Tools        []string `json:"tools,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Record is the state snapshot of one pipeline run. Records are never
// mutated in place once stored: every transition clones, edits the clone
// and writes it whole through a Store.
type Record struct {
	ID              string     `json:"id"`
	Description     string     `json:"description"`
	Status          Status     `json:"status"`
	CurrentStage    string     `json:"current_stage"`
	StagesCompleted []string   `json:"stages_completed"`
	Result          *Result    `json:"result,omitempty"`
	Errors          []string   `json:"errors,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
}

// New creates a queued record for a submission. firstStage is the name of
// the stage the pipeline will enter first.
func New(description, firstStage string) *Record {
	return &Record{
		ID:              NewID(),
		Description:     description,
		Status:          StatusQueued,
		CurrentStage:    firstStage,
		StagesCompleted: []string{},
		CreatedAt:       time.Now().UTC(),
	}
}

// NewID returns a job id with a time-ordered prefix so that ids sort
// lexically by recency, plus a random suffix against same-second collisions.
func NewID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
}

// Clone returns a deep copy safe to mutate without affecting stored snapshots.
func (r *Record) Clone() *Record {
	c := *r
	c.StagesCompleted = append([]string(nil), r.StagesCompleted...)
	if r.Errors != nil {
		c.Errors = append([]string(nil), r.Errors...)
	}
	if r.CompletedAt != nil {
		ts := *r.CompletedAt
		c.CompletedAt = &ts
	}
	if r.FailedAt != nil {
		ts := *r.FailedAt
		c.FailedAt = &ts
	}
	if r.Result != nil {
		res := *r.Result
		res.Tools = append([]string(nil), r.Result.Tools...)
		res.Warnings = append([]string(nil), r.Result.Warnings...)
		c.Result = &res
	}
	return &c
}

// Terminal reports whether the record has reached a final status.
func (r *Record) Terminal() bool {
	return r.Status == StatusComplete || r.Status == StatusFailed
}
