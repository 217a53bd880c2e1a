package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Result contains information about a completed download.
type Result struct {
	FilePath    string
	Size        int64
	ContentType string
	StatusCode  int
}

// Options provides configuration for downloads.
type Options struct {
	OutputPath  string            // Where to save the file
	CreateDirs  bool              // Create parent directories if they don't exist
	MaxFileSize int64             // Maximum file size to download (0 = no limit)
	Timeout     time.Duration     // HTTP request timeout
	Headers     map[string]string // Additional request headers
}

// Download fetches url and writes the response body to options.OutputPath.
//
// The response must be 200 OK; common error statuses are mapped to distinct
// error messages so a failed run is easy to diagnose from the log alone.
func Download(ctx context.Context, url string, options *Options) (*Result, error) {
	if options == nil || options.OutputPath == "" {
		return nil, fmt.Errorf("download options with an output path are required")
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, */*")
	req.Header.Set("User-Agent", "whitelist-publisher/1.0")
	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := validateResponse(resp); err != nil {
		return nil, err
	}

	if options.MaxFileSize > 0 && resp.ContentLength > options.MaxFileSize {
		return nil, fmt.Errorf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", resp.ContentLength, options.MaxFileSize)
	}

	if options.CreateDirs {
		dir := filepath.Dir(options.OutputPath)
		if dir != "." && dir != "/" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directories: %w", err)
			}
		}
	}

	file, err := os.Create(options.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = resp.Body
	if options.MaxFileSize > 0 {
		reader = io.LimitReader(resp.Body, options.MaxFileSize+1)
	}
	written, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if options.MaxFileSize > 0 && written > options.MaxFileSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size (%d bytes)", options.MaxFileSize)
	}

	return &Result{
		FilePath:    options.OutputPath,
		Size:        written,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// validateResponse validates the HTTP response status.
func validateResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed: HTTP 401")
	case http.StatusForbidden:
		return fmt.Errorf("access forbidden: HTTP 403")
	case http.StatusNotFound:
		return fmt.Errorf("file not found: HTTP 404")
	default:
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
}
