// Package local is the single-player save file: one SQLite database
// holding snapshots and campaign progress.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/saeidalz13/warzones/db/store"
	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/campaign"
)

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open creates the database file and its directory when missing.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open save file: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping save file: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Debug("save file opened", zap.String("path", path))
	return s, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS campaign_progress (
			player TEXT PRIMARY KEY,
			progress TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveSnapshot(ctx context.Context, id string, blob []byte) error {
	query := `
		INSERT INTO snapshots (id, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, blob, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM snapshots WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.SnapshotNotFound(id)
		}
		return nil, err
	}
	return blob, nil
}

func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cerr.SnapshotNotFound(id)
	}
	return nil
}

// Snapshots lists saved game ids, newest first.
func (s *Store) Snapshots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM snapshots ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) LoadProgress(ctx context.Context, player string) (*campaign.Progress, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT progress FROM campaign_progress WHERE player = ?`, player).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return campaign.NewProgress(), nil
		}
		return nil, err
	}
	return campaign.DecodeProgress([]byte(data))
}

func (s *Store) SaveProgress(ctx context.Context, player string, p *campaign.Progress) error {
	if p == nil {
		return cerr.ErrNilPayload
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	query := `
		INSERT INTO campaign_progress (player, progress, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (player) DO UPDATE SET progress = excluded.progress, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, player, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	s.logger.Debug("progress saved", zap.String("player", player), zap.Int("stars", p.TotalStars))
	return nil
}
