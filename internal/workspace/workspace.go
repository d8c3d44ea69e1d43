package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is the root under which generated projects live. All paths are
// checked against traversal out of the root.
type Dir struct {
	root string
}

func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Dir{root: abs}, nil
}

func (d *Dir) Root() string {
	return d.root
}

// ProjectPath returns the absolute directory for a project name.
func (d *Dir) ProjectPath(project string) (string, error) {
	return d.resolve(project, ".")
}

func (d *Dir) resolve(project, rel string) (string, error) {
	if project == "" || strings.Contains(project, "..") || strings.ContainsAny(project, `/\`) {
		return "", fmt.Errorf("invalid project name: %s", project)
	}
	if strings.Contains(rel, "..") {
		return "", fmt.Errorf("invalid path: %s", rel)
	}

	fullPath := filepath.Join(d.root, project, rel)
	if !strings.HasPrefix(fullPath, filepath.Join(d.root, project)) {
		return "", fmt.Errorf("path traversal detected: %s", rel)
	}
	return fullPath, nil
}

func (d *Dir) WriteFile(project, rel string, content []byte) error {
	fullPath, err := d.resolve(project, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return os.WriteFile(fullPath, content, 0644)
}

func (d *Dir) ReadFile(project, rel string) ([]byte, error) {
	fullPath, err := d.resolve(project, rel)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", rel)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

// ListFiles returns the relative paths of all regular files in a project,
// skipping the .git directory.
func (d *Dir) ListFiles(project string) ([]string, error) {
	projectDir, err := d.ProjectPath(project)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(projectDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		relPath, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		files = append(files, relPath)
		return nil
	})
	return files, err
}
