package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
)

// ImageBuilder builds container images from a generated project's
// Dockerfile. It is optional: when the daemon is unreachable the caller
// runs without one and packaging stays tar-only.
type ImageBuilder struct {
	client  *client.Client
	timeout time.Duration
}

func NewImageBuilder(timeout time.Duration) (*ImageBuilder, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ImageBuilder{client: cli, timeout: timeout}, nil
}

func (b *ImageBuilder) Close() error {
	return b.client.Close()
}

// Ping checks the daemon is reachable before the builder is wired in.
func (b *ImageBuilder) Ping(ctx context.Context) error {
	_, err := b.client.Ping(ctx)
	return err
}

func (b *ImageBuilder) Build(ctx context.Context, contextPath, imageTag string) error {
	buildCtx, err := archive.TarWithOptions(contextPath, &archive.TarOptions{
		ExcludePatterns: []string{".git"},
	})
	if err != nil {
		return fmt.Errorf("create build context: %w", err)
	}
	defer buildCtx.Close()

	buildCtxWithTimeout, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	response, err := b.client.ImageBuild(buildCtxWithTimeout, buildCtx, types.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{imageTag},
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("docker build: %w", err)
	}
	defer response.Body.Close()

	// Drain the stream; a failed step arrives as an error entry, not an
	// HTTP error.
	decoder := json.NewDecoder(response.Body)
	for {
		var stream map[string]any
		if err := decoder.Decode(&stream); err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("read build output: %w", err)
		}
		if errorStr, ok := stream["error"].(string); ok {
			return fmt.Errorf("docker build: %s", errorStr)
		}
	}

	return nil
}
