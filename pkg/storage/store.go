// Package storage keeps persisted engine snapshots as opaque JSON blobs keyed
// by "<clientId>:<store>". Every backend prefixes keys with its namespace.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/db"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/migrate"
	"github.com/angelmondragon/meaw-storefront/pkg/redis"
)

// ErrNotFound is returned by Get when nothing was stored under the key.
var ErrNotFound = errors.New("snapshot not found")

// Store is a durable key/value store for serialized snapshots.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	// Driver names the backend for logs and metric labels.
	Driver() string
}

// Key joins parts with ':' skipping blanks.
func Key(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}

func namespaceOrDefault(namespace string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return "meaw"
	}
	return namespace
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// New builds the store selected by MEAW_STORAGE_DRIVER. The sql driver also
// applies the embedded migrations when MEAW_AUTO_MIGRATE is set.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	ns := cfg.Storage.Namespace
	driver := cfg.Storage.NormalizedDriver()

	if logg != nil {
		logg.Info(logg.WithField(ctx, "storage_driver", driver), "opening snapshot store")
	}

	switch driver {
	case config.StorageDriverMemory:
		return NewMemoryStore(ns), nil

	case config.StorageDriverFile:
		return NewFileStore(cfg.Storage.Dir, ns)

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, ns, logg)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return NewRedisStore(client), nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("sql store: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("sql store migrations: %w", err)
		}
		return NewSQLStore(client, ns), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
