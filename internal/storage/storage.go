// Package storage persists uploaded objects such as profile photos.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ObjectStore stores an object under key and returns the URL it is served from.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// cleanKey normalises key to a relative slash path and rejects keys that
// would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(key, `\`, "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
