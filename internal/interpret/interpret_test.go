package interpret

import (
	"context"
	"testing"
)

func TestHeuristic_WeatherDescription(t *testing.T) {
	spec, err := NewHeuristic().Interpret(context.Background(), "weather lookup tool")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	if spec.Name != "weather-lookup-tool" {
		t.Errorf("expected weather-lookup-tool, got %s", spec.Name)
	}
	if len(spec.Tools) < 1 {
		t.Fatal("expected at least one tool")
	}
	if spec.Tools[0].Name != "get_forecast" {
		t.Errorf("expected get_forecast, got %s", spec.Tools[0].Name)
	}
}

func TestHeuristic_GenericFallback(t *testing.T) {
	spec, err := NewHeuristic().Interpret(context.Background(), "frobnicate the widgets")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	if len(spec.Tools) != 1 {
		t.Fatalf("expected one fallback tool, got %d", len(spec.Tools))
	}
	if spec.Tools[0].Name != "frobnicate_the_widgets_query" {
		t.Errorf("unexpected tool name: %s", spec.Tools[0].Name)
	}
}

func TestHeuristic_UnusableDescription(t *testing.T) {
	if _, err := NewHeuristic().Interpret(context.Background(), "!!! ???"); err == nil {
		t.Error("expected error for description with no usable words")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Weather Lookup Tool", "weather-lookup-tool"},
		{"  a   B!! c ", "a-b-c"},
		{"one two three four five six", "one-two-three-four"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
