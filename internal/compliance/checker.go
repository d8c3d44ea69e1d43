package compliance

import (
	"fmt"
	"regexp"
	"strings"
)

var schemaTypeRe = regexp.MustCompile(`\btype\s*:`)

// Report is the outcome of one compliance check. Issues are descriptive
// text in extraction order; Compliant is false when any fatal structural
// check failed.
type Report struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
}

// Check runs the structural checks over one generated source document.
// This is pattern-based linting, not parsing: it tolerates formatting
// variance and cannot catch semantic errors.
func Check(doc string) Report {
	var issues []string
	fatal := false

	addFatal := func(issue string) {
		issues = append(issues, issue)
		fatal = true
	}

	// 1. Both declaration markers must be present.
	if !strings.Contains(doc, listMarker) {
		addFatal(fmt.Sprintf("Missing capability list declaration (%s handler not found)", listMarker))
	}
	if !strings.Contains(doc, callMarker) {
		addFatal(fmt.Sprintf("Missing invocation declaration (%s handler not found)", callMarker))
	}

	// 2. Every declared tool needs a handler; handlers for undeclared tools
	// are reported but tolerated.
	declared := DeclaredTools(doc)
	handled := HandledTools(doc)

	handledSet := make(map[string]bool, len(handled))
	for _, name := range handled {
		handledSet[name] = true
	}
	declaredSet := make(map[string]bool, len(declared))
	for _, name := range declared {
		declaredSet[name] = true
	}

	for _, name := range declared {
		if !handledSet[name] {
			addFatal(fmt.Sprintf("Missing tool handler for '%s'", name))
		}
	}
	for _, name := range handled {
		if name == reservedDefaultName {
			continue
		}
		if !declaredSet[name] {
			issues = append(issues, fmt.Sprintf("Handler for undeclared tool '%s'", name))
		}
	}

	// 3. Every input schema object needs a type property.
	for i, block := range inputSchemaBlocks(doc) {
		if !schemaTypeRe.MatchString(block) {
			issues = append(issues, fmt.Sprintf("Input schema %d is missing a 'type' property", i+1))
		}
	}

	// 4. The server must wire a transport.
	if !strings.Contains(doc, ".connect(") && !strings.Contains(doc, ".run(") {
		addFatal("No transport wiring found (expected a connect or run call)")
	}

	return Report{Compliant: !fatal, Issues: issues}
}

// inputSchemaBlocks returns the object literal following each inputSchema
// key, in document order.
func inputSchemaBlocks(doc string) []string {
	var blocks []string
	rest := doc
	for {
		idx := strings.Index(rest, "inputSchema:")
		if idx < 0 {
			return blocks
		}
		rest = rest[idx+len("inputSchema:"):]
		block, ok := delimitedBlock(rest, '{', '}')
		if !ok {
			return blocks
		}
		blocks = append(blocks, block)
	}
}
