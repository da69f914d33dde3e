package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meltforce/liftplan/internal/history"
)

// KVStore is a history.Store scoped to one user's rows of kv_entries.
type KVStore struct {
	db     *DB
	userID int
}

var _ history.Store = (*KVStore)(nil)

// KV returns the key-value store of userID.
func (db *DB) KV(userID int) history.Store {
	return &KVStore{db: db, userID: userID}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.Pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE user_id = $1 AND key = $2`,
		s.userID, key,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s for user %d: %w", key, s.userID, err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO kv_entries (user_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = NOW()
	`, s.userID, key, value)
	if err != nil {
		return fmt.Errorf("writing %s for user %d: %w", key, s.userID, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE user_id = $1 AND key = $2`,
		s.userID, key,
	)
	if err != nil {
		return fmt.Errorf("deleting %s for user %d: %w", key, s.userID, err)
	}
	return nil
}
