package artifact

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// ErrMissingArtifact indicates the generator produced no output file. A run
// hitting this error must abort before any write to the target repository.
var ErrMissingArtifact = errors.New("artifact file is missing")

// Info describes a validated artifact.
type Info struct {
	Path      string
	Size      int64
	LineCount int
}

// Validate checks that the artifact exists at path and returns its line
// count. Existence is the only acceptance criterion: an empty artifact is
// valid and will be published as-is.
func Validate(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, path)
		}
		return nil, fmt.Errorf("failed to access artifact %s: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("artifact path %s is a directory, not a file", path)
	}

	lines, err := countLines(path)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:      path,
		Size:      stat.Size(),
		LineCount: lines,
	}, nil
}

func countLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to count artifact lines: %w", err)
	}
	return count, nil
}
