package storage

import (
	"context"

	"github.com/rs/zerolog"
)

// fallbackStore tries the primary store first, then falls back to a local store.
type fallbackStore struct {
	primary  ObjectStore
	fallback ObjectStore
	logger   zerolog.Logger
}

// NewFallbackStore creates a store that writes to primary and falls back to
// fallback when primary fails. If primary is nil only fallback is used.
func NewFallbackStore(primary, fallback ObjectStore, logger zerolog.Logger) ObjectStore {
	return &fallbackStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "fallback-store").Logger(),
	}
}

// Put stores the object in the first store that accepts it.
func (s *fallbackStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if s.primary != nil {
		url, err := s.primary.Put(ctx, key, contentType, body)
		if err == nil {
			return url, nil
		}

		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to store in primary store, falling back to local file system")
	} else {
		s.logger.Debug().Msg("primary store not configured, using local file system")
	}

	return s.fallback.Put(ctx, key, contentType, body)
}
