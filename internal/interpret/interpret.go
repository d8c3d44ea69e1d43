package interpret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ServiceSpec is the structured form of a free-text service description.
type ServiceSpec struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Tools       []Tool `json:"tools"`
}

type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Properties  []Property `json:"properties,omitempty"`
}

type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Interpreter turns free text into a ServiceSpec.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (*ServiceSpec, error)
}

// Heuristic is a keyword-driven interpreter. It stands in for a smarter
// text oracle behind the same interface.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// domainTools maps description keywords to the tools a server for that
// domain usually exposes. First match wins; order matters.
var domainTools = []struct {
	keywords []string
	tools    []Tool
}{
	{
		keywords: []string{"weather", "forecast", "temperature"},
		tools: []Tool{
			{
				Name:        "get_forecast",
				Description: "Get the weather forecast for a location",
				Properties:  []Property{{Name: "city", Type: "string", Description: "City name"}},
			},
			{
				Name:        "get_alerts",
				Description: "Get active weather alerts for a region",
				Properties:  []Property{{Name: "region", Type: "string", Description: "Region code"}},
			},
		},
	},
	{
		keywords: []string{"time", "clock", "timezone"},
		tools: []Tool{
			{
				Name:        "get_time",
				Description: "Get the current time in a timezone",
				Properties:  []Property{{Name: "timezone", Type: "string", Description: "IANA timezone name"}},
			},
		},
	},
	{
		keywords: []string{"translate", "translation", "language"},
		tools: []Tool{
			{
				Name:        "translate_text",
				Description: "Translate text between languages",
				Properties: []Property{
					{Name: "text", Type: "string", Description: "Text to translate"},
					{Name: "target", Type: "string", Description: "Target language code"},
				},
			},
		},
	},
	{
		keywords: []string{"search", "lookup", "find", "query"},
		tools: []Tool{
			{
				Name:        "search",
				Description: "Search for matching records",
				Properties:  []Property{{Name: "query", Type: "string", Description: "Search query"}},
			},
		},
	},
}

func (h *Heuristic) Interpret(ctx context.Context, text string) (*ServiceSpec, error) {
	name := Slugify(text)
	if name == "" {
		return nil, fmt.Errorf("could not derive a service name from description")
	}

	spec := &ServiceSpec{
		Name:        name,
		Version:     "0.1.0",
		Description: strings.TrimSpace(text),
	}

	lowered := strings.ToLower(text)
	for _, domain := range domainTools {
		for _, kw := range domain.keywords {
			if strings.Contains(lowered, kw) {
				spec.Tools = cloneTools(domain.tools)
				return spec, nil
			}
		}
	}

	// No domain matched: a generic query tool named after the service.
	spec.Tools = []Tool{
		{
			Name:        strings.ReplaceAll(name, "-", "_") + "_query",
			Description: "Query the " + name + " service",
			Properties:  []Property{{Name: "input", Type: "string", Description: "Query input"}},
		},
	}
	return spec, nil
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a lowercase-hyphenated name from free text, capped at
// four words.
func Slugify(text string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(text), "-")
	slug = strings.Trim(slug, "-")
	parts := strings.Split(slug, "-")
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, "-")
}

func cloneTools(tools []Tool) []Tool {
	out := make([]Tool, len(tools))
	for i, tool := range tools {
		out[i] = tool
		out[i].Properties = append([]Property(nil), tool.Properties...)
	}
	return out
}
