package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/serverforge/orchestrator/internal/compliance"
	"github.com/serverforge/orchestrator/internal/emit"
	"github.com/serverforge/orchestrator/internal/interpret"
	"github.com/serverforge/orchestrator/internal/job"
	"github.com/serverforge/orchestrator/internal/pack"
	"github.com/serverforge/orchestrator/internal/registry"
)

const (
	StageInterpret = "interpret"
	StageGenerate  = "generate"
	StageValidate  = "validate"
	StagePackage   = "package"
	StageRegister  = "register"
)

// Stages is the canonical order. Stages are never reordered, skipped or
// retried; a failed job is retried only as a fresh submission.
var Stages = []string{StageInterpret, StageGenerate, StageValidate, StagePackage, StageRegister}

var ErrEmptyDescription = errors.New("description must not be empty")

// Emitter renders a service spec into a project tree.
type Emitter interface {
	Emit(ctx context.Context, spec *interpret.ServiceSpec) (*emit.Artifact, error)
}

// Packager turns a project tree into a distributable package.
type Packager interface {
	Package(ctx context.Context, artifactPath, name, version string) (*pack.Result, error)
}

// Observer is notified with a record snapshot after every persisted
// transition.
type Observer func(*job.Record)

// Engine drives submissions through the stage sequence. Stages within a
// job run strictly serially; independent jobs interleave freely. All
// collaborators are injected at construction.
type Engine struct {
	store      job.Store
	interp     interpret.Interpreter
	emitter    Emitter
	packager   Packager
	registry   registry.Registry
	classifier *compliance.Classifier
	runner     Runner

	mu       sync.RWMutex
	observer Observer
	wg       sync.WaitGroup
}

func NewEngine(store job.Store, interp interpret.Interpreter, emitter Emitter, packager Packager, reg registry.Registry, classifier *compliance.Classifier) *Engine {
	if classifier == nil {
		classifier = compliance.NewClassifier(compliance.DefaultRules())
	}
	return &Engine{
		store:      store,
		interp:     interp,
		emitter:    emitter,
		packager:   packager,
		registry:   reg,
		classifier: classifier,
	}
}

func (e *Engine) SetObserver(fn Observer) {
	e.mu.Lock()
	e.observer = fn
	e.mu.Unlock()
}

// Submit validates the description, places a queued record in the store
// and schedules asynchronous execution. The record is visible to readers
// before Submit returns.
func (e *Engine) Submit(ctx context.Context, description string) (*job.Record, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	rec := job.New(description, Stages[0])
	if err := e.store.Create(rec); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(rec.ID)
	}()

	return rec.Clone(), nil
}

// RunSync drives one submission through the whole pipeline before
// returning its terminal record. Used by the one-shot CLI mode.
func (e *Engine) RunSync(ctx context.Context, description string) (*job.Record, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	rec := job.New(description, Stages[0])
	if err := e.store.Create(rec); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	e.run(rec.ID)
	return e.store.Get(rec.ID)
}

// Wait blocks until all in-flight jobs have reached a terminal state.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// runState carries collaborator outputs from one stage to the next
// within a single job. It never outlives the run.
type runState struct {
	spec     *interpret.ServiceSpec
	artifact *emit.Artifact
	pkg      *pack.Result
	outcome  *registry.Outcome
	issues   []string
	warnings []string
}

func (e *Engine) run(id string) {
	// An orchestration bug fails this one job, never its siblings.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Job %s: internal error: %v", id, r)
			e.failJob(id, "internal error during orchestration")
		}
	}()

	ctx := context.Background()

	snap, err := e.store.Get(id)
	if err != nil {
		log.Printf("Job %s: load failed: %v", id, err)
		return
	}

	state := &runState{}

	snap.Status = job.StatusRunning
	snap.CurrentStage = Stages[0]
	if err := e.persist(snap); err != nil {
		return
	}

	for i, stage := range Stages {
		result := e.runner.Run(ctx, stage, func(ctx context.Context) (any, error) {
			return e.execStage(ctx, stage, snap, state)
		})

		if !result.OK {
			// A dirty compliance report with only warning-category issues
			// does not stop the pipeline; the issues ride along into the
			// final result.
			if stage == StageValidate && len(state.issues) > 0 && !e.classifier.AnyFatal(state.issues) {
				log.Printf("Job %s: validation issues tolerated: %v", id, state.issues)
				state.warnings = append(state.warnings, state.issues...)
			} else {
				e.finalizeFailed(snap, stage, result.Err)
				return
			}
		}

		snap.StagesCompleted = append(snap.StagesCompleted, stage)
		if i == len(Stages)-1 {
			e.finalizeComplete(snap, state)
			return
		}
		snap.CurrentStage = Stages[i+1]
		if err := e.persist(snap); err != nil {
			return
		}
	}
}

func (e *Engine) execStage(ctx context.Context, stage string, snap *job.Record, state *runState) (any, error) {
	switch stage {
	case StageInterpret:
		spec, err := e.interp.Interpret(ctx, snap.Description)
		if err != nil {
			return nil, fmt.Errorf("interpret description: %w", err)
		}
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		if spec.Version == "" {
			spec.Version = "0.1.0"
		}
		state.spec = spec
		return spec, nil

	case StageGenerate:
		artifact, err := e.emitter.Emit(ctx, state.spec)
		if err != nil {
			return nil, fmt.Errorf("generate artifact: %w", err)
		}
		state.artifact = artifact
		return artifact, nil

	case StageValidate:
		doc, err := os.ReadFile(filepath.Join(state.artifact.Path, emit.ServerFile))
		if err != nil {
			return nil, fmt.Errorf("read generated server: %w", err)
		}
		report := compliance.Check(string(doc))
		state.issues = report.Issues
		if !report.Compliant {
			return nil, fmt.Errorf("compliance check failed: %s", strings.Join(report.Issues, "; "))
		}
		// Non-fatal findings on a compliant document become warnings.
		state.warnings = append(state.warnings, report.Issues...)
		return report, nil

	case StagePackage:
		result, err := e.packager.Package(ctx, state.artifact.Path, state.spec.Name, state.spec.Version)
		if err != nil {
			return nil, fmt.Errorf("package artifact: %w", err)
		}
		state.pkg = result
		return result, nil

	case StageRegister:
		outcome, err := e.registry.RegisterOrUpdate(e.registryRecord(state))
		if err != nil {
			return nil, fmt.Errorf("register artifact: %w", err)
		}
		state.outcome = outcome
		return outcome, nil
	}

	return nil, fmt.Errorf("unknown stage: %s", stage)
}

func validateSpec(spec *interpret.ServiceSpec) error {
	if spec == nil || spec.Name == "" {
		return errors.New("interpreter did not produce a valid spec: missing name")
	}
	if len(spec.Tools) == 0 {
		return errors.New("interpreter did not produce a valid spec: no tools")
	}
	for _, tool := range spec.Tools {
		if tool.Name == "" {
			return errors.New("interpreter did not produce a valid spec: unnamed tool")
		}
	}
	return nil
}

func (e *Engine) registryRecord(state *runState) *registry.Record {
	tools := make([]string, len(state.spec.Tools))
	for i, tool := range state.spec.Tools {
		tools[i] = tool.Name
	}
	return &registry.Record{
		Name:         state.spec.Name,
		Version:      state.spec.Version,
		Description:  state.spec.Description,
		ArtifactPath: state.artifact.Path,
		PackagePath:  state.pkg.PackagePath,
		ImageRef:     state.pkg.ImageRef,
		Revision:     state.artifact.Revision,
		Tools:        tools,
	}
}

func (e *Engine) finalizeComplete(snap *job.Record, state *runState) {
	now := time.Now().UTC()
	snap.Status = job.StatusComplete
	snap.CurrentStage = job.StageDone
	snap.CompletedAt = &now

	tools := make([]string, len(state.spec.Tools))
	for i, tool := range state.spec.Tools {
		tools[i] = tool.Name
	}
	snap.Result = &job.Result{
		Name:         state.spec.Name,
		Version:      state.spec.Version,
		ArtifactPath: state.artifact.Path,
		PackagePath:  state.pkg.PackagePath,
		ImageRef:     state.pkg.ImageRef,
		Revision:     state.artifact.Revision,
		Tools:        tools,
		Warnings:     state.warnings,
	}

	if err := e.persist(snap); err == nil {
		log.Printf("Job %s: complete (%s %s)", snap.ID, state.spec.Name, state.spec.Version)
	}
}

func (e *Engine) finalizeFailed(snap *job.Record, stage, msg string) {
	now := time.Now().UTC()
	snap.Status = job.StatusFailed
	snap.CurrentStage = stage
	snap.FailedAt = &now
	snap.Errors = append(snap.Errors, msg)

	if err := e.persist(snap); err == nil {
		log.Printf("Job %s: failed at %s: %s", snap.ID, stage, msg)
	}
}

// failJob marks a job failed from outside the normal stage loop, used on
// internal errors where no consistent snapshot is at hand.
func (e *Engine) failJob(id, msg string) {
	snap, err := e.store.Get(id)
	if err != nil || snap.Terminal() {
		return
	}
	e.finalizeFailed(snap, snap.CurrentStage, msg)
}

// persist writes a snapshot whole and notifies the observer. Readers
// only ever see records written here or at submission.
func (e *Engine) persist(snap *job.Record) error {
	if err := e.store.Update(snap); err != nil {
		log.Printf("Job %s: persist failed: %v", snap.ID, err)
		return err
	}
	e.mu.RLock()
	observer := e.observer
	e.mu.RUnlock()
	if observer != nil {
		observer(snap.Clone())
	}
	return nil
}
