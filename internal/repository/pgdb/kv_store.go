package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

// KVStore хранит состояние витрины в таблице kv_store.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: failed to get key %s: %w", whereami.WhereAmI(), key, errors.Join(e.ErrStoreUnavailable, err))
	}

	return value, true, nil
}

// Set записывает значение, существующий ключ перезаписывается.
func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now();
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to set key %s: %w", whereami.WhereAmI(), key, errors.Join(e.ErrStoreUnavailable, err))
	}

	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%s: failed to remove key %s: %w", whereami.WhereAmI(), key, errors.Join(e.ErrStoreUnavailable, err))
	}

	return nil
}
