package gitsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goGit "github.com/go-git/go-git/v5"
	goGitConfig "github.com/go-git/go-git/v5/config"
	goGitObject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Publisher Bot", Email: "bot@example.com"}

// initRemote creates a bare repository seeded with one commit containing the
// given files and returns its path. Local paths act as the remote URL so no
// network is involved.
func initRemote(t *testing.T, files map[string]string) string {
	t.Helper()

	bareDir := filepath.Join(t.TempDir(), "remote.git")
	_, err := goGit.PlainInit(bareDir, true)
	require.NoError(t, err)

	workDir := filepath.Join(t.TempDir(), "seed")
	repo, err := goGit.PlainInit(workDir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(workDir, name), []byte(content), 0644))
		_, err = worktree.Add(name)
		require.NoError(t, err)
	}
	_, err = worktree.Commit("initial", &goGit.CommitOptions{
		Author: &goGitObject.Signature{Name: "seed", Email: "seed@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = repo.CreateRemote(&goGitConfig.RemoteConfig{
		Name: "origin",
		URLs: []string{bareDir},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Push(&goGit.PushOptions{RemoteName: "origin"}))

	return bareDir
}

func remoteHead(t *testing.T, bareDir string) string {
	t.Helper()
	repo, err := goGit.PlainOpen(bareDir)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	return ref.Hash().String()
}

func remoteFileContent(t *testing.T, bareDir, name string) string {
	t.Helper()
	repo, err := goGit.PlainOpen(bareDir)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)
	file, err := commit.File(name)
	require.NoError(t, err)
	content, err := file.Contents()
	require.NoError(t, err)
	return content
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.hostrules")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSync_CommitsChangedContent(t *testing.T) {
	remote := initRemote(t, map[string]string{"whitelist.hostrules": ".old.com\n"})
	artifact := writeArtifact(t, ".baidu.com\n.qq.com\n")

	client, err := NewClient(nil, remote, "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	result, err := client.Sync(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.NotEmpty(t, result.CommitHash)
	assert.Contains(t, result.Message, time.Now().Format("2006-01-02"))

	assert.Equal(t, ".baidu.com\n.qq.com\n", remoteFileContent(t, remote, "whitelist.hostrules"))
	assert.Equal(t, result.CommitHash, remoteHead(t, remote))
}

func TestSync_SkipsIdenticalContent(t *testing.T) {
	content := ".baidu.com\n.qq.com\n"
	remote := initRemote(t, map[string]string{"whitelist.hostrules": content})
	artifact := writeArtifact(t, content)

	headBefore := remoteHead(t, remote)

	client, err := NewClient(nil, remote, "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	result, err := client.Sync(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Empty(t, result.CommitHash)
	assert.Equal(t, headBefore, remoteHead(t, remote))
}

func TestSync_RepeatedRunsAreIdempotent(t *testing.T) {
	remote := initRemote(t, map[string]string{"README.md": "# whitelist\n"})
	artifact := writeArtifact(t, ".baidu.com\n")

	client, err := NewClient(nil, remote, "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	first, err := client.Sync(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, first.Outcome)

	second, err := client.Sync(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, second.Outcome)

	assert.Equal(t, first.CommitHash, remoteHead(t, remote))
	assert.Equal(t, ".baidu.com\n", remoteFileContent(t, remote, "whitelist.hostrules"))
}

func TestSync_PublishesEmptyArtifact(t *testing.T) {
	remote := initRemote(t, map[string]string{"whitelist.hostrules": ".old.com\n"})
	artifact := writeArtifact(t, "")

	client, err := NewClient(nil, remote, "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	result, err := client.Sync(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.Equal(t, "", remoteFileContent(t, remote, "whitelist.hostrules"))
}

func TestSync_MissingArtifact(t *testing.T) {
	remote := initRemote(t, map[string]string{"README.md": "# whitelist\n"})

	client, err := NewClient(nil, remote, "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	_, err = client.Sync(context.Background(), filepath.Join(t.TempDir(), "absent"))

	assert.Error(t, err)
}

func TestSync_CloneFailureIsFatal(t *testing.T) {
	client, err := NewClient(nil, filepath.Join(t.TempDir(), "no-such-remote"), "master", "whitelist.hostrules", testAuthor, "auto update whitelist {date}")
	require.NoError(t, err)

	_, err = client.Sync(context.Background(), writeArtifact(t, ".baidu.com\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone repository")
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		branch   string
		fileName string
	}{
		{name: "Empty URL", url: "", branch: "main", fileName: "whitelist.hostrules"},
		{name: "Empty branch", url: "https://github.com/example/whitelist.git", branch: "", fileName: "whitelist.hostrules"},
		{name: "Empty file name", url: "https://github.com/example/whitelist.git", branch: "main", fileName: ""},
		{name: "SSH URL", url: "git@github.com:example/whitelist.git", branch: "main", fileName: "whitelist.hostrules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(nil, tt.url, tt.branch, tt.fileName, testAuthor, "auto update whitelist {date}")
			assert.Error(t, err)
		})
	}
}

func TestRenderMessage(t *testing.T) {
	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "auto update whitelist 2025-06-01", RenderMessage("auto update whitelist {date}", at))
	assert.Equal(t, "no placeholder", RenderMessage("no placeholder", at))
}
