package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunner_Success(t *testing.T) {
	var r Runner

	result := r.Run(context.Background(), "interpret", func(ctx context.Context) (any, error) {
		return "output", nil
	})

	if !result.OK {
		t.Fatalf("expected success, got %s", result.Err)
	}
	if result.Output != "output" {
		t.Errorf("unexpected output: %v", result.Output)
	}
}

func TestRunner_ErrorNormalized(t *testing.T) {
	var r Runner

	result := r.Run(context.Background(), "generate", func(ctx context.Context) (any, error) {
		return nil, errors.New("emitter broke")
	})

	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Err != "emitter broke" {
		t.Errorf("unexpected error: %s", result.Err)
	}
}

func TestRunner_PanicNormalized(t *testing.T) {
	var r Runner

	result := r.Run(context.Background(), "validate", func(ctx context.Context) (any, error) {
		panic("boom")
	})

	if result.OK {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Err, "validate stage panicked: boom") {
		t.Errorf("unexpected error: %s", result.Err)
	}
}
