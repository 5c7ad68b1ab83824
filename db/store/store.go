// Package store keeps saved games and campaign progress. The server uses
// Postgres or memory; the terminal client uses the SQLite store in
// db/local.
package store

import (
	"context"
	"sync"

	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/campaign"
)

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, id string, blob []byte) error
	// LoadSnapshot returns an error matching cerr.ErrSnapshotNotFound
	// for unknown ids.
	LoadSnapshot(ctx context.Context, id string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

type ProgressStore interface {
	// LoadProgress returns a fresh campaign for players without a save.
	LoadProgress(ctx context.Context, player string) (*campaign.Progress, error)
	SaveProgress(ctx context.Context, player string, p *campaign.Progress) error
}

type Store interface {
	SnapshotStore
	ProgressStore
}

type Memory struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	progress  map[string]campaign.Progress
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string][]byte),
		progress:  make(map[string]campaign.Progress),
	}
}

func (m *Memory) SaveSnapshot(_ context.Context, id string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = append([]byte(nil), blob...)
	return nil
}

func (m *Memory) LoadSnapshot(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.snapshots[id]
	if !ok {
		return nil, cerr.SnapshotNotFound(id)
	}
	return append([]byte(nil), blob...), nil
}

func (m *Memory) DeleteSnapshot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[id]; !ok {
		return cerr.SnapshotNotFound(id)
	}
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) LoadProgress(_ context.Context, player string) (*campaign.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[player]
	if !ok {
		return campaign.NewProgress(), nil
	}
	return p.Clone(), nil
}

func (m *Memory) SaveProgress(_ context.Context, player string, p *campaign.Progress) error {
	if p == nil {
		return cerr.ErrNilPayload
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[player] = *p.Clone()
	return nil
}
