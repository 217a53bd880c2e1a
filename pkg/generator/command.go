package generator

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandGenerator delegates artifact generation to an external command. The
// command is expected to write the artifact to ArtifactPath; a non-zero exit
// is a generation failure and no artifact is guaranteed afterwards.
type CommandGenerator struct {
	Command      []string
	ArtifactPath string

	log *zap.SugaredLogger
}

// NewCommandGenerator creates a CommandGenerator.
func NewCommandGenerator(command []string, artifactPath string, log *zap.SugaredLogger) *CommandGenerator {
	return &CommandGenerator{
		Command:      command,
		ArtifactPath: artifactPath,
		log:          log,
	}
}

func (g *CommandGenerator) Generate(ctx context.Context) (string, error) {
	if len(g.Command) == 0 {
		return "", fmt.Errorf("generator command cannot be empty")
	}

	g.log.Infow("running generator command", "command", strings.Join(g.Command, " "))

	cmd := exec.CommandContext(ctx, g.Command[0], g.Command[1:]...)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		g.log.Infow("generator command output", "output", strings.TrimSpace(string(output)))
	}
	if err != nil {
		return "", fmt.Errorf("generator command failed: %w", err)
	}

	return g.ArtifactPath, nil
}
