package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements ObjectStore on the local file system.
type fileStore struct {
	root    string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a store that writes below root and serves objects
// from baseURL.
func NewFileStore(root, baseURL string, logger zerolog.Logger) ObjectStore {
	return &fileStore{
		root:    root,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "file-store").Logger(),
	}
}

// Put writes body to root/key, creating directories as needed.
func (s *fileStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to create object directory")
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if err := os.WriteFile(target, body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to write object")
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}

	s.logger.Debug().
		Str("file", target).
		Str("content_type", contentType).
		Int("bytes", len(body)).
		Msg("object stored on local file system")

	return joinURL(s.baseURL, cleaned), nil
}
