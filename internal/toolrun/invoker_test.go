package toolrun

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestInvoker_CapturesStdout(t *testing.T) {
	inv := NewInvoker(5 * time.Second)

	out, err := inv.Invoke(context.Background(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "hello" {
		t.Errorf("unexpected stdout: %q", out.Stdout)
	}
}

func TestInvoker_FailureIncludesStderr(t *testing.T) {
	inv := NewInvoker(5 * time.Second)

	_, err := inv.Invoke(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestInvoker_Timeout(t *testing.T) {
	inv := NewInvoker(100 * time.Millisecond)

	start := time.Now()
	_, err := inv.Invoke(context.Background(), "", "sleep", "5")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout message, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("invoke did not return promptly on timeout")
	}
}
