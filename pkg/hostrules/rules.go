package hostrules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SeparatorComment marks the boundary between curated prewhite entries and
// automatically generated entries in a merged rule list. It is always present
// in generated output, even when no prewhite entries exist.
const SeparatorComment = "# -------autogen------"

// serverLineRegex matches dnsmasq-style upstream entries of the form
// server=/domain.com/114.114.114.114 and captures the domain.
var serverLineRegex = regexp.MustCompile(`server=/([^/]+)/`)

// Extract reads dnsmasq-style configuration lines and returns one host rule
// per matched entry, in input order. Each rule is the captured domain with a
// leading dot, e.g. ".domain.com". Lines without a server entry are ignored.
func Extract(r io.Reader) ([]string, error) {
	var rules []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		match := serverLineRegex.FindStringSubmatch(scanner.Text())
		if match != nil {
			rules = append(rules, "."+match[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan domain list: %w", err)
	}
	return rules, nil
}

// Merge combines curated prewhite rules with generated rules. Prewhite rules
// come first, followed by the separator comment, followed by the generated
// rules. Generated rules already present in the prewhite list are dropped so
// the merged list never repeats an entry.
func Merge(prewhite, generated []string) []string {
	merged := make([]string, 0, len(prewhite)+len(generated)+1)
	merged = append(merged, prewhite...)
	merged = append(merged, SeparatorComment)

	seen := make(map[string]struct{}, len(prewhite))
	for _, rule := range prewhite {
		seen[rule] = struct{}{}
	}
	for _, rule := range generated {
		if _, ok := seen[rule]; ok {
			continue
		}
		merged = append(merged, rule)
	}
	return merged
}

// ReadRules reads a rule file with one entry per line. Blank lines and
// surrounding whitespace are dropped.
func ReadRules(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file %s: %w", path, err)
	}
	defer file.Close()

	var rules []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			rules = append(rules, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	return rules, nil
}

// WriteRules writes rules to path, one per line with a trailing newline.
// Parent directories are created if they do not exist.
func WriteRules(path string, rules []string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	var builder strings.Builder
	for _, rule := range rules {
		builder.WriteString(rule)
		builder.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write rule file %s: %w", path, err)
	}
	return nil
}
