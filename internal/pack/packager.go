package pack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/pkg/archive"

	"github.com/serverforge/orchestrator/internal/toolrun"
)

// Result describes one packaged artifact.
type Result struct {
	PackagePath string `json:"package_path"`
	ImageRef    string `json:"image_ref,omitempty"`
}

// Packager turns a generated project tree into a tarball under the dist
// directory, and optionally into a container image when an ImageBuilder
// is attached.
type Packager struct {
	distDir string
	images  *ImageBuilder
	tools   *toolrun.Invoker
}

func NewPackager(distDir string, images *ImageBuilder) (*Packager, error) {
	if err := os.MkdirAll(distDir, 0755); err != nil {
		return nil, fmt.Errorf("create dist dir: %w", err)
	}
	return &Packager{distDir: distDir, images: images}, nil
}

// SetInvoker enables an `npm install` of the project before archiving,
// so the tarball ships with its dependencies resolved.
func (p *Packager) SetInvoker(inv *toolrun.Invoker) {
	p.tools = inv
}

func (p *Packager) Package(ctx context.Context, artifactPath, name, version string) (*Result, error) {
	if p.tools != nil {
		if _, err := p.tools.Invoke(ctx, artifactPath, "npm", "install", "--omit=dev"); err != nil {
			return nil, fmt.Errorf("install dependencies: %w", err)
		}
	}

	tarball, err := archive.TarWithOptions(artifactPath, &archive.TarOptions{
		Compression:     archive.Gzip,
		ExcludePatterns: []string{".git"},
	})
	if err != nil {
		return nil, fmt.Errorf("create tarball: %w", err)
	}
	defer tarball.Close()

	packagePath := filepath.Join(p.distDir, fmt.Sprintf("%s-%s.tar.gz", name, version))
	out, err := os.Create(packagePath)
	if err != nil {
		return nil, fmt.Errorf("create package file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, tarball); err != nil {
		os.Remove(packagePath)
		return nil, fmt.Errorf("write package: %w", err)
	}

	result := &Result{PackagePath: packagePath}

	if p.images != nil {
		tag := fmt.Sprintf("serverforge/%s:%s", name, version)
		if err := p.images.Build(ctx, artifactPath, tag); err != nil {
			return nil, fmt.Errorf("build image: %w", err)
		}
		result.ImageRef = tag
	}

	return result, nil
}
