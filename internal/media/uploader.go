// Package media moves picked images from the local staging area to the
// media host and hands back a durable public URL.
package media

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Result describes a stored image. Only URL is required by callers.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Format   string `json:"format,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
}

// Uploader performs a single upload attempt; failures wrap
// fundraise.ErrUploadFailed and are never retried.
type Uploader interface {
	Upload(ctx context.Context, localURI string) (Result, error)
}

// LocalPath resolves a file:// URI (or a bare absolute path) to a path on disk.
func LocalPath(localURI string) (string, error) {
	if localURI == "" {
		return "", fmt.Errorf("empty image uri")
	}
	if !strings.Contains(localURI, "://") {
		return filepath.Clean(localURI), nil
	}
	u, err := url.Parse(localURI)
	if err != nil {
		return "", fmt.Errorf("parse image uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported image uri scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

// FileURI is the inverse of LocalPath.
func FileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
