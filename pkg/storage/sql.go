package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/meaw-storefront/internal/repo"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/db"
)

// SQLStore upserts snapshots into the snapshots table.
type SQLStore struct {
	client    *db.Client
	rows      *repo.Snapshots
	namespace string
}

func NewSQLStore(client *db.Client, namespace string) *SQLStore {
	return &SQLStore{
		client:    client,
		rows:      repo.NewSnapshots(client.DB()),
		namespace: namespaceOrDefault(namespace),
	}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	row, err := s.rows.Find(ctx, Key(s.namespace, key))
	if errors.Is(err, repo.ErrSnapshotNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %q: %w", key, err)
	}
	return []byte(row.Value), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.rows.Upsert(ctx, Key(s.namespace, key), value); err != nil {
		return fmt.Errorf("upsert snapshot %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.rows.Delete(ctx, Key(s.namespace, key)); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *SQLStore) Close() error { return s.client.Close() }

func (s *SQLStore) Driver() string { return config.StorageDriverSQL }
