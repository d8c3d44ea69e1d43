package compliance

import (
	"fmt"
	"regexp"
	"strings"
)

// Textual markers the generation templates always emit. Every extraction
// pattern is anchored to one of these so formatting variance elsewhere in
// the document cannot produce false positives.
const (
	listMarker = "ListToolsRequestSchema"
	callMarker = "CallToolRequestSchema"

	// reservedDefaultName is the catch-all branch name; a handler for it is
	// never reported as undeclared.
	reservedDefaultName = "default"
)

var (
	toolNameRe  = regexp.MustCompile(`name:\s*['"]([A-Za-z0-9_-]+)['"]`)
	caseLabelRe = regexp.MustCompile(`case\s+['"]([A-Za-z0-9_-]+)['"]\s*:`)
	destructRe  = regexp.MustCompile(`const\s*\{\s*name(?:\s*:\s*([A-Za-z_][A-Za-z0-9_]*))?`)
)

// DeclaredTools extracts tool names from the first bracketed block after
// the list-capabilities marker. Order is extraction order, de-duplicated.
func DeclaredTools(doc string) []string {
	idx := strings.Index(doc, listMarker)
	if idx < 0 {
		return nil
	}
	block, ok := delimitedBlock(doc[idx:], '[', ']')
	if !ok {
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, m := range toolNameRe.FindAllStringSubmatch(block, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// HandledTools extracts tool names the document dispatches on: case labels
// plus equality comparisons against the handler's name binding, matched
// across the whole document.
func HandledTools(doc string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, m := range caseLabelRe.FindAllStringSubmatch(doc, -1) {
		add(m[1])
	}

	eqRe := regexp.MustCompile(fmt.Sprintf(`\b%s\s*===?\s*['"]([A-Za-z0-9_-]+)['"]`, regexp.QuoteMeta(handlerParamName(doc))))
	for _, m := range eqRe.FindAllStringSubmatch(doc, -1) {
		add(m[1])
	}

	return names
}

// handlerParamName derives the identifier the invocation handler binds the
// tool name to (e.g. `const { name: toolName } = request.params`). Falls
// back to "name" when no destructure is found.
func handlerParamName(doc string) string {
	if m := destructRe.FindStringSubmatch(doc); m != nil && m[1] != "" {
		return m[1]
	}
	return "name"
}

// delimitedBlock returns the content between the first open delimiter in s
// and its matching close delimiter, exclusive of the delimiters.
func delimitedBlock(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}
