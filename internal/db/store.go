// exposes the kv_entries table as a kv.Store so screens can live in postgres or sqlite
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/kv"
)

type Store struct {
	db *sqlx.DB
}

// compile-time check that Store implements kv.Store
var _ kv.Store = (*Store)(nil)

func NewStore(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`
		SELECT entry_value
		FROM kv_entries
		WHERE entry_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read kv entry")
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO kv_entries (entry_key, entry_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (entry_key) DO UPDATE
		SET entry_value = excluded.entry_value,
		updated_at = excluded.updated_at`), key, value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write kv entry")
	}
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv_entries WHERE entry_key = ?`), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete kv entry")
	}
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
