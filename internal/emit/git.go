package emit

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// commitScaffold initializes a repository in the generated project and
// commits the scaffold, so the registry can record the exact revision a
// server was generated at. Re-emitting into an existing project reuses
// the repository and adds a new commit.
func commitScaffold(path, name string) (string, error) {
	repo, err := git.PlainInit(path, false)
	if err == git.ErrRepositoryAlreadyExists {
		repo, err = git.PlainOpen(path)
	}
	if err != nil {
		return "", fmt.Errorf("init repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}

	if err := worktree.AddGlob("."); err != nil {
		return "", fmt.Errorf("stage files: %w", err)
	}

	hash, err := worktree.Commit(fmt.Sprintf("scaffold %s", name), &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "serverforge",
			Email: "forge@localhost",
			When:  time.Now().UTC(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return hash.String(), nil
}
