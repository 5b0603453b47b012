package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vsarchitect/vsa/internal/storage"
)

// Querier is the subset of *pgxpool.Pool used by SnapshotStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	selectSnapshotSQL = `SELECT value FROM settings_snapshots WHERE key = $1`
	upsertSnapshotSQL = `INSERT INTO settings_snapshots (key, value, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteSnapshotSQL = `DELETE FROM settings_snapshots WHERE key = $1`
)

// SnapshotStore is a storage.Provider backed by the settings_snapshots table.
// Values must be JSON documents.
type SnapshotStore struct {
	q      Querier
	logger *slog.Logger
}

var _ storage.Provider = (*SnapshotStore)(nil)

func NewSnapshotStore(log *slog.Logger, q Querier) *SnapshotStore {
	if log == nil {
		log = slog.Default()
	}
	return &SnapshotStore{
		q:      q,
		logger: log.With(slog.String("store", "settings_snapshots")),
	}
}

func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	if err := s.q.QueryRow(ctx, selectSnapshotSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return value, nil
}

func (s *SnapshotStore) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("snapshot %s: value is not valid JSON", key)
	}
	if _, err := s.q.Exec(ctx, upsertSnapshotSQL, key, string(value)); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	s.logger.Debug("snapshot stored", slog.String("key", key), slog.Int("bytes", len(value)))
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.q.Exec(ctx, deleteSnapshotSQL, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}
