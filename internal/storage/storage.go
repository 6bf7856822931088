// Package storage persists the named JSON blobs that make up fixbot's
// durable state: the user knowledge layer, query statistics and user
// profiles.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Blob keys.
const (
	KeyQueryStats = "queryStats"
	KeyKnowledge  = "chatbotKnowledge"
	KeyProfiles   = "allUserProfiles"
)

// ErrNotFound is returned by Get when no blob is stored under a key.
var ErrNotFound = errors.New("storage: blob not found")

// Backend is a durable string-keyed blob store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LoadJSON decodes the blob at key into v. A missing blob leaves v
// untouched and a corrupt one is logged and treated as missing; both
// report false. Only backend failures are returned as errors.
func LoadJSON(ctx context.Context, b Backend, key string, v any, logger *zap.Logger) (bool, error) {
	data, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		if logger != nil {
			logger.Warn("ignoring corrupt blob", zap.String("key", key), zap.Error(err))
		}
		return false, nil
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := b.Put(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
