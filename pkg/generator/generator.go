package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hostrules/whitelist-publisher/pkg/config"
	"github.com/hostrules/whitelist-publisher/pkg/fetch"
	"github.com/hostrules/whitelist-publisher/pkg/hostrules"
)

// Generator produces the whitelist artifact for one run and returns its path.
// On failure no usable artifact is guaranteed to exist.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// FromConfig selects the generator implementation: an external command when
// one is configured, otherwise the built-in source pipeline.
func FromConfig(cfg *config.Config, log *zap.SugaredLogger) Generator {
	if len(cfg.Generator.Command) > 0 {
		return &CommandGenerator{
			Command:      cfg.Generator.Command,
			ArtifactPath: cfg.ArtifactPath,
			log:          log,
		}
	}
	return &SourceGenerator{
		SourceURL:    cfg.Source.URL,
		SourceFile:   cfg.Source.File,
		PrewhiteFile: cfg.PrewhiteFile,
		ArtifactPath: cfg.ArtifactPath,
		FetchTimeout: cfg.FetchTimeout,
		log:          log,
	}
}

// SourceGenerator builds the whitelist from an upstream dnsmasq-style domain
// list: fetch (or read a local file), extract host rules, merge the curated
// prewhite list, write the artifact.
type SourceGenerator struct {
	SourceURL    string
	SourceFile   string
	PrewhiteFile string
	ArtifactPath string
	FetchTimeout time.Duration

	log *zap.SugaredLogger
}

// NewSourceGenerator creates a SourceGenerator.
func NewSourceGenerator(sourceURL, sourceFile, prewhiteFile, artifactPath string, fetchTimeout time.Duration, log *zap.SugaredLogger) *SourceGenerator {
	return &SourceGenerator{
		SourceURL:    sourceURL,
		SourceFile:   sourceFile,
		PrewhiteFile: prewhiteFile,
		ArtifactPath: artifactPath,
		FetchTimeout: fetchTimeout,
		log:          log,
	}
}

func (g *SourceGenerator) Generate(ctx context.Context) (string, error) {
	sourcePath := g.SourceFile
	if sourcePath == "" {
		if g.SourceURL == "" {
			return "", fmt.Errorf("no source url or file configured")
		}

		tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("whitelist-source-%d.conf", time.Now().UnixNano()))
		defer os.Remove(tempFile)

		g.log.Infow("fetching domain list", "url", g.SourceURL)
		result, err := fetch.Download(ctx, g.SourceURL, &fetch.Options{
			OutputPath: tempFile,
			CreateDirs: true,
			Timeout:    g.FetchTimeout,
		})
		if err != nil {
			return "", fmt.Errorf("failed to fetch domain list: %w", err)
		}
		g.log.Infow("fetched domain list", "bytes", result.Size)
		sourcePath = tempFile
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source %s: %w", sourcePath, err)
	}
	defer source.Close()

	generated, err := hostrules.Extract(source)
	if err != nil {
		return "", err
	}
	if len(generated) == 0 {
		return "", fmt.Errorf("no domains found in source %s", sourcePath)
	}

	prewhite := g.loadPrewhite()
	merged := hostrules.Merge(prewhite, generated)

	if err := hostrules.WriteRules(g.ArtifactPath, merged); err != nil {
		return "", err
	}

	g.log.Infow("wrote artifact",
		"path", g.ArtifactPath,
		"rules", len(merged),
		"prewhiteRules", len(prewhite),
		"filteredDuplicates", len(prewhite)+len(generated)+1-len(merged),
	)
	return g.ArtifactPath, nil
}

// loadPrewhite reads the curated prewhite list if present. A missing or
// unreadable prewhite file is not fatal, matching the original behavior.
func (g *SourceGenerator) loadPrewhite() []string {
	if g.PrewhiteFile == "" {
		return nil
	}
	if _, err := os.Stat(g.PrewhiteFile); err != nil {
		g.log.Infow("no prewhite file found", "path", g.PrewhiteFile)
		return nil
	}
	rules, err := hostrules.ReadRules(g.PrewhiteFile)
	if err != nil {
		g.log.Errorw("failed to read prewhite file, continuing without it", "path", g.PrewhiteFile, "error", err)
		return nil
	}
	g.log.Infow("loaded prewhite file", "path", g.PrewhiteFile, "rules", len(rules))
	return rules
}
