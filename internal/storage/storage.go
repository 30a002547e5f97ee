// Package storage reads report inputs and writes report outputs by key,
// either on the local file system or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Store is a flat key/value object store. Keys use forward slashes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the store selected by cfg.Kind, behind a cache when
// cfg.Cache.MaxEntries is set.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	store, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.MaxEntries > 0 {
		return NewCachedStore(store, cfg.Cache, logger), nil
	}
	return store, nil
}

func newBackend(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Kind {
	case "", "file":
		s, err := NewFileStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(ctx, cfg.S3, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
}
