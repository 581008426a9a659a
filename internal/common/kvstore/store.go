// Package kvstore provides the durable key-value slot the local submission
// store writes through. Backends: in-process memory, Redis and PostgreSQL.
package kvstore

import (
	"context"
	"fmt"

	"registration-pipeline/internal/common/config"
)

// Store is a string-valued key-value medium. Get reports found=false with a
// nil error when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}

// Open builds the backend selected by cfg.Backend. The caller owns Close on
// backends that implement Closer.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreBackendMemory, "":
		return NewMemory(), nil
	case config.StoreBackendRedis:
		client, err := NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	case config.StoreBackendPostgres:
		client, err := NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
