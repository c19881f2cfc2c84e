// Package blobstore uploads file bytes directly to pre-authorised blob URLs.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// Uploader puts the content of r at fileURL with the given content type.
type Uploader interface {
	Upload(ctx context.Context, fileURL, contentType string, r io.Reader) error
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty file url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse file url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported file url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("file url has no host")
	}
	return nil
}
