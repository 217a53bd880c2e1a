package gitsync

import (
	"fmt"
	"strings"
	"time"
)

// Author identifies the commit author used for published updates.
type Author struct {
	Name  string
	Email string
}

// Client wraps synchronization operations against one target repository.
type Client struct {
	url             string
	branch          string
	fileName        string
	author          Author
	messageTemplate string
	auth            *Auth
}

// NewClient validates the target repository coordinates and returns a Client.
//
// Parameters:
//   - auth: Optional credentials; required for private repositories and pushes
//   - url: The HTTPS Git repository URL (required, cannot be empty)
//   - branch: The branch to publish to (required, cannot be empty)
//   - fileName: Destination file path inside the repository (required)
//   - author: Commit author for published updates
//   - messageTemplate: Commit message template; {date} is replaced with the
//     run date formatted as YYYY-MM-DD
func NewClient(auth *Auth, url, branch, fileName string, author Author, messageTemplate string) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("git URL cannot be empty")
	}
	if branch == "" {
		return nil, fmt.Errorf("git branch cannot be empty")
	}
	if fileName == "" {
		return nil, fmt.Errorf("destination file name cannot be empty")
	}
	if strings.HasPrefix(url, "git@") || strings.Contains(url, "ssh://") {
		return nil, fmt.Errorf("only https based git is supported")
	}

	return &Client{
		auth:            auth,
		url:             url,
		branch:          branch,
		fileName:        fileName,
		author:          author,
		messageTemplate: messageTemplate,
	}, nil
}

// RenderMessage expands the commit message template for the given run time.
func RenderMessage(template string, now time.Time) string {
	return strings.ReplaceAll(template, "{date}", now.Format("2006-01-02"))
}
