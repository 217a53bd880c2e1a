package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAndValidateConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
target:
  url: https://github.com/example/whitelist.git
`)

	cfg, err := NewConfigManager(path).LoadAndValidateConfig()

	require.NoError(t, err)
	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, "dist/whitelist.hostrules", cfg.ArtifactPath)
	assert.Equal(t, "prewhite.hostrules", cfg.PrewhiteFile)
	assert.Equal(t, DefaultCommitMessage, cfg.CommitMessage)
	assert.Equal(t, "main", cfg.Target.Branch)
	assert.Equal(t, "whitelist.hostrules", cfg.Target.FileName)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoadAndValidateConfig_OverridesFromFile(t *testing.T) {
	path := writeConfigFile(t, `
source:
  file: input/domains.conf
artifactPath: out/list.hostrules
commitMessage: "update {date}"
target:
  url: https://github.com/example/whitelist.git
  branch: master
  fileName: list.hostrules
  username: publisher-bot
  authorName: Publisher Bot
  authorEmail: bot@example.com
fetchTimeout: 90s
`)

	cfg, err := NewConfigManager(path).LoadAndValidateConfig()

	require.NoError(t, err)
	assert.Equal(t, "input/domains.conf", cfg.Source.File)
	assert.Equal(t, "out/list.hostrules", cfg.ArtifactPath)
	assert.Equal(t, "update {date}", cfg.CommitMessage)
	assert.Equal(t, "master", cfg.Target.Branch)
	assert.Equal(t, "publisher-bot", cfg.Target.Username)
	assert.Equal(t, "Publisher Bot", cfg.Target.AuthorName)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
}

func TestLoadAndValidateConfig_TokenFromEnvironmentOnly(t *testing.T) {
	t.Setenv("WHITELIST_TOKEN", "github_pat_secret")

	path := writeConfigFile(t, `
target:
  url: https://github.com/example/whitelist.git
`)

	cfg, err := NewConfigManager(path).LoadAndValidateConfig()

	require.NoError(t, err)
	assert.Equal(t, "github_pat_secret", cfg.Target.Token)
}

func TestLoadAndValidateConfig_MissingTargetURL(t *testing.T) {
	path := writeConfigFile(t, `
artifactPath: dist/whitelist.hostrules
`)

	_, err := NewConfigManager(path).LoadAndValidateConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadAndValidateConfig_BadSourceURL(t *testing.T) {
	path := writeConfigFile(t, `
source:
  url: not-a-url
target:
  url: https://github.com/example/whitelist.git
`)

	_, err := NewConfigManager(path).LoadAndValidateConfig()

	assert.Error(t, err)
}

func TestLoadAndValidateConfig_MissingFile(t *testing.T) {
	_, err := NewConfigManager(filepath.Join(t.TempDir(), "absent.yaml")).LoadAndValidateConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRedacted_MasksToken(t *testing.T) {
	cfg := Config{Target: TargetConfig{Token: "github_pat_secret"}}

	redacted := cfg.Redacted()

	assert.Equal(t, "***", redacted.Target.Token)
	assert.Equal(t, "github_pat_secret", cfg.Target.Token)
}
