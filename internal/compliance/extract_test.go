package compliance

import (
	"reflect"
	"testing"
)

const sampleServer = `
const server = new Server({ name: 'weather-lookup', version: '0.1.0' });

server.setRequestHandler(ListToolsRequestSchema, async () => ({
  tools: [
    {
      name: 'get_forecast',
      description: 'Look up the forecast',
      inputSchema: { type: 'object', properties: { city: { type: 'string' } } },
    },
    {
      name: 'get_alerts',
      description: 'Active weather alerts',
      inputSchema: { type: 'object', properties: { state: { type: 'string' } } },
    },
  ],
}));

server.setRequestHandler(CallToolRequestSchema, async (request) => {
  const { name } = request.params;
  switch (name) {
    case 'get_forecast':
      return forecast(request.params.arguments);
    case 'get_alerts':
      return alerts(request.params.arguments);
    default:
      throw new Error('Unknown tool: ' + name);
  }
});

await server.connect(transport);
`

func TestDeclaredTools(t *testing.T) {
	got := DeclaredTools(sampleServer)
	want := []string{"get_forecast", "get_alerts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDeclaredTools_NoMarker(t *testing.T) {
	if got := DeclaredTools("const x = 1;"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestDeclaredTools_FirstBlockOnly(t *testing.T) {
	doc := `
ListToolsRequestSchema
tools: [ { name: 'alpha' } ]
other: [ { name: 'beta' } ]
`
	got := DeclaredTools(doc)
	if len(got) != 1 || got[0] != "alpha" {
		t.Errorf("expected [alpha], got %v", got)
	}
}

func TestHandledTools_CaseLabels(t *testing.T) {
	got := HandledTools(sampleServer)
	want := []string{"get_forecast", "get_alerts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestHandledTools_EqualityComparison(t *testing.T) {
	doc := `
const { name } = request.params;
if (name === 'lookup') { return lookup(); }
if (name === 'lookup') { return lookup(); }
`
	got := HandledTools(doc)
	if len(got) != 1 || got[0] != "lookup" {
		t.Errorf("expected [lookup] de-duplicated, got %v", got)
	}
}

func TestHandledTools_RenamedParam(t *testing.T) {
	doc := `
const { name: toolName } = request.params;
if (toolName === 'lookup') { return lookup(); }
`
	got := HandledTools(doc)
	if len(got) != 1 || got[0] != "lookup" {
		t.Errorf("expected [lookup], got %v", got)
	}
}

func TestHandlerParamName(t *testing.T) {
	if got := handlerParamName("const { name: tool } = request.params;"); got != "tool" {
		t.Errorf("expected tool, got %s", got)
	}
	if got := handlerParamName("const { name } = request.params;"); got != "name" {
		t.Errorf("expected name, got %s", got)
	}
	if got := handlerParamName("nothing here"); got != "name" {
		t.Errorf("expected fallback name, got %s", got)
	}
}

func TestDelimitedBlock_Nested(t *testing.T) {
	block, ok := delimitedBlock("x { a { b } c } y", '{', '}')
	if !ok {
		t.Fatal("expected block")
	}
	if block != " a { b } c " {
		t.Errorf("unexpected block: %q", block)
	}
}

func TestDelimitedBlock_Unbalanced(t *testing.T) {
	if _, ok := delimitedBlock("x { a", '{', '}'); ok {
		t.Error("expected no block for unbalanced input")
	}
}
