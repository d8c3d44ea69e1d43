package emit

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/serverforge/orchestrator/internal/interpret"
	"github.com/serverforge/orchestrator/internal/workspace"
)

// ServerFile is the main generated document, the one the compliance
// checker inspects.
const ServerFile = "server.js"

// Artifact describes one generated project tree.
type Artifact struct {
	Path     string   `json:"path"`
	Files    []string `json:"files"`
	Revision string   `json:"revision,omitempty"`
}

// Generator renders a ServiceSpec into a project tree under the
// workspace. Output is deterministic for identical specs; the optional
// git commit only adds a revision on top.
type Generator struct {
	ws      *workspace.Dir
	gitInit bool
}

func NewGenerator(ws *workspace.Dir, gitInit bool) *Generator {
	return &Generator{ws: ws, gitInit: gitInit}
}

func (g *Generator) Emit(ctx context.Context, spec *interpret.ServiceSpec) (*Artifact, error) {
	files := []struct {
		name string
		tmpl *template.Template
	}{
		{ServerFile, serverTemplate},
		{"package.json", packageTemplate},
		{"README.md", readmeTemplate},
		{"Dockerfile", dockerfileTemplate},
	}

	generated := make([]string, 0, len(files))
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, spec); err != nil {
			return nil, fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := g.ws.WriteFile(spec.Name, f.name, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		generated = append(generated, f.name)
	}

	path, err := g.ws.ProjectPath(spec.Name)
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{Path: path, Files: generated}

	if g.gitInit {
		revision, err := commitScaffold(path, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("commit scaffold: %w", err)
		}
		artifact.Revision = revision
	}

	return artifact, nil
}
