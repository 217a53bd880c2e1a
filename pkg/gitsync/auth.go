package gitsync

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Auth holds the push credential for the target repository.
//
// Note: For GitHub and similar services, use a fine-grained personal access
// token scoped to push access on the target repository only.
type Auth struct {
	Username string // Username for Git authentication
	Token    string // Personal access token for authentication
}

// getAuthMethod returns the transport authentication for the given URL.
// Only HTTP(S)-based Git URLs are supported; SSH URLs are rejected.
func getAuthMethod(url string, auth *Auth) (transport.AuthMethod, error) {
	if strings.HasPrefix(url, "git@") || strings.Contains(url, "ssh://") {
		return nil, fmt.Errorf("only https based git is supported")
	}

	if auth == nil {
		return nil, nil
	}

	if auth.Username != "" && auth.Token != "" {
		return &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Token,
		}, nil
	}

	return nil, nil
}
