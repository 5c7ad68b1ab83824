package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/saeidalz13/warzones/db/sqlc"
	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/campaign"
)

// Postgres stores blobs and progress through the generated queries.
type Postgres struct {
	queries sqlc.Querier
}

var _ Store = (*Postgres)(nil)

func NewPostgres(queries sqlc.Querier) *Postgres {
	return &Postgres{queries: queries}
}

func (p *Postgres) SaveSnapshot(ctx context.Context, id string, blob []byte) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	return p.queries.UpsertSnapshot(ctx, sqlc.UpsertSnapshotParams{ID: id, Blob: blob})
}

func (p *Postgres) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	row, err := p.queries.GetSnapshot(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.SnapshotNotFound(id)
		}
		return nil, err
	}
	return row.Blob, nil
}

func (p *Postgres) DeleteSnapshot(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	n, err := p.queries.DeleteSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return cerr.SnapshotNotFound(id)
	}
	return nil
}

func (p *Postgres) LoadProgress(ctx context.Context, player string) (*campaign.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	row, err := p.queries.GetProgress(ctx, player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return campaign.NewProgress(), nil
		}
		return nil, err
	}
	return campaign.DecodeProgress(row.Progress)
}

func (p *Postgres) SaveProgress(ctx context.Context, player string, progress *campaign.Progress) error {
	if progress == nil {
		return cerr.ErrNilPayload
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	return p.queries.UpsertProgress(ctx, sqlc.UpsertProgressParams{Player: player, Progress: data})
}
