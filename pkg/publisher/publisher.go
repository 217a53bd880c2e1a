package publisher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostrules/whitelist-publisher/pkg/artifact"
	"github.com/hostrules/whitelist-publisher/pkg/config"
	"github.com/hostrules/whitelist-publisher/pkg/generator"
	"github.com/hostrules/whitelist-publisher/pkg/gitsync"
)

// State is the terminal state of a successful run.
type State string

const (
	StateCommitted State = "committed"
	StateSkipped   State = "skipped"
)

// RunResult summarizes one completed run.
type RunResult struct {
	RunID      string
	State      State
	LineCount  int
	CommitHash string
	Duration   time.Duration
}

// Syncer publishes a validated artifact into the target repository.
type Syncer interface {
	Sync(ctx context.Context, artifactPath string) (*gitsync.SyncResult, error)
}

// Publisher runs the generate → validate → sync pipeline. One run is strictly
// sequential; a per-target file lock keeps overlapping runs (e.g. a manual
// trigger during a scheduled one) from racing each other's push.
type Publisher struct {
	generator    generator.Generator
	syncer       Syncer
	artifactPath string
	lockPath     string
	log          *zap.SugaredLogger
}

// New builds a Publisher from configuration.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Publisher, error) {
	client, err := NewSyncClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		generator:    generator.FromConfig(cfg, log),
		syncer:       client,
		artifactPath: cfg.ArtifactPath,
		lockPath:     lockPath(cfg.LockDir, cfg.Target.URL),
		log:          log,
	}, nil
}

// NewSyncClient builds the git client for the configured target repository.
func NewSyncClient(cfg *config.Config) (*gitsync.Client, error) {
	var auth *gitsync.Auth
	if cfg.Target.Token != "" {
		auth = &gitsync.Auth{
			Username: cfg.Target.Username,
			Token:    cfg.Target.Token,
		}
	}
	author := gitsync.Author{
		Name:  cfg.Target.AuthorName,
		Email: cfg.Target.AuthorEmail,
	}
	return gitsync.NewClient(auth, cfg.Target.URL, cfg.Target.Branch, cfg.Target.FileName, author, cfg.CommitMessage)
}

// lockPath derives a lock file path keyed on the target repository so runs
// against different targets never contend.
func lockPath(lockDir, targetURL string) string {
	sum := sha256.Sum256([]byte(targetURL))
	return filepath.Join(lockDir, fmt.Sprintf("whitelist-publisher-%x.lock", sum[:8]))
}

// Run executes one publish run:
//
//	START → GENERATE → VALIDATE → STAGE_DIFF → COMMIT_PUSH → DONE
//
// A missing artifact aborts before any write to the target repository. When
// the generated content is byte-identical to the target snapshot the run
// finishes in StateSkipped with zero commits.
func (p *Publisher) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	start := time.Now()
	log := p.log.With("runId", runID)

	lock := flock.New(p.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, newRunError(StageLock, fmt.Errorf("failed to acquire run lock %s: %w", p.lockPath, err))
	}
	if !locked {
		return nil, newRunError(StageLock, fmt.Errorf("another run holds the lock %s", p.lockPath))
	}
	defer lock.Unlock()

	log.Infow("starting run", "artifact", p.artifactPath)

	artifactPath, err := p.generator.Generate(ctx)
	if err != nil {
		return nil, newRunError(StageGenerate, err)
	}

	info, err := artifact.Validate(artifactPath)
	if err != nil {
		return nil, newRunError(StageValidate, err)
	}
	log.Infow("artifact validated", "lines", info.LineCount, "bytes", info.Size)

	syncResult, err := p.syncer.Sync(ctx, artifactPath)
	if err != nil {
		return nil, newRunError(StageSync, err)
	}

	result := &RunResult{
		RunID:     runID,
		LineCount: info.LineCount,
		Duration:  time.Since(start),
	}
	switch syncResult.Outcome {
	case gitsync.OutcomeSkipped:
		result.State = StateSkipped
		log.Infow("no content change, skipping commit")
	case gitsync.OutcomeCommitted:
		result.State = StateCommitted
		result.CommitHash = syncResult.CommitHash
		log.Infow("pushed whitelist update", "commit", syncResult.CommitHash, "message", syncResult.Message)
	}
	log.Infow("run finished", "state", result.State, "duration", result.Duration)

	return result, nil
}
