package gitsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	goGitObject "github.com/go-git/go-git/v5/plumbing/object"
)

// Outcome is the terminal state of a sync operation.
type Outcome string

const (
	// OutcomeCommitted means the artifact differed from the target snapshot
	// and exactly one commit was pushed.
	OutcomeCommitted Outcome = "committed"
	// OutcomeSkipped means the artifact was byte-identical to the target
	// snapshot and the repository was left untouched.
	OutcomeSkipped Outcome = "skipped"
)

// SyncResult describes the result of a completed sync.
type SyncResult struct {
	Outcome    Outcome
	CommitHash string
	Message    string
}

// Sync publishes the artifact at artifactPath into the target repository.
//
// The target branch is cloned into a temporary directory, the destination
// file is overwritten with the artifact content and staged, and the staged
// state is compared against HEAD. If nothing changed the sync terminates
// with OutcomeSkipped and no commit is created; repeated runs with unchanged
// generator output never produce redundant commits. Otherwise one commit is
// created with the rendered message template and pushed.
//
// Clone, commit, and push failures are fatal for the run; there is no retry.
func (c *Client) Sync(ctx context.Context, artifactPath string) (*SyncResult, error) {
	content, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", artifactPath, err)
	}

	cloneDir, err := os.MkdirTemp("", "whitelist-git-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(cloneDir)

	authMethod, err := getAuthMethod(c.url, c.auth)
	if err != nil {
		return nil, fmt.Errorf("failed to setup authentication: %w", err)
	}

	repo, err := goGit.PlainCloneContext(ctx, cloneDir, false, &goGit.CloneOptions{
		URL:           c.url,
		ReferenceName: plumbing.NewBranchReferenceName(c.branch),
		SingleBranch:  true,
		Auth:          authMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository from %s: %w", c.url, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree: %w", err)
	}

	destPath := filepath.Join(cloneDir, c.fileName)
	if dir := filepath.Dir(destPath); dir != cloneDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create destination directory: %w", err)
		}
	}
	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write destination file: %w", err)
	}

	if _, err := worktree.Add(c.fileName); err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", c.fileName, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return &SyncResult{Outcome: OutcomeSkipped}, nil
	}

	now := time.Now()
	message := RenderMessage(c.messageTemplate, now)
	commitHash, err := worktree.Commit(message, &goGit.CommitOptions{
		Author: &goGitObject.Signature{
			Name:  c.author.Name,
			Email: c.author.Email,
			When:  now,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", c.fileName, err)
	}

	err = repo.PushContext(ctx, &goGit.PushOptions{
		RemoteName: "origin",
		Auth:       authMethod,
	})
	if err != nil && err != goGit.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("failed to push to %s: %w", c.url, err)
	}

	return &SyncResult{
		Outcome:    OutcomeCommitted,
		CommitHash: commitHash.String(),
		Message:    message,
	}, nil
}
