package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

const opTimeout = 5 * time.Second

type kvStore struct {
	db *sql.DB
}

// NewKVStore создаёт PostgreSQL-реализацию KVStore поверх таблицы kv_entries.
func NewKVStore(store *Store) *kvStore {
	return &kvStore{db: store.DB()}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("select kv entry: %w", err)
	}
	return value, nil
}

// Set перезаписывает значение целиком (last writer wins).
func (s *kvStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы для health-проверки.
func (s *kvStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ domain.KVStore = (*kvStore)(nil)
