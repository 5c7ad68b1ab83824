package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/campaign"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saves", "warzones.db")
	s, err := Open(path, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	return s, path
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	defer s.Close()

	if _, err := s.LoadSnapshot(ctx, "missing"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
	}

	if err := s.SaveSnapshot(ctx, "autosave", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSnapshot(ctx, "autosave", []byte("second")); err != nil {
		t.Fatal(err)
	}
	blob, err := s.LoadSnapshot(ctx, "autosave")
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != "second" {
		t.Fatalf("expected: second\t got: %s", blob)
	}

	ids, err := s.Snapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "autosave" {
		t.Fatalf("expected: [autosave]\t got: %v", ids)
	}

	if err := s.DeleteSnapshot(ctx, "autosave"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSnapshot(ctx, "autosave"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
	}
}

func TestProgressSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	p, err := s.LoadProgress(ctx, "local")
	if err != nil {
		t.Fatal(err)
	}
	if p.HighestUnlocked != 1 {
		t.Fatalf("expected highest unlocked: 1\t got: %d", p.HighestUnlocked)
	}
	if _, err := campaign.MustLoadCatalogue().Record(p, 1, true, 40); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveProgress(ctx, "local", p); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.LoadProgress(ctx, "local")
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := loaded.Record(1)
	if !ok || !rec.Completed || rec.Stars != 1 {
		t.Fatalf("expected mission 1 completed with 1 star\t got: %+v", rec)
	}
	if loaded.HighestUnlocked != 2 {
		t.Fatalf("expected highest unlocked: 2\t got: %d", loaded.HighestUnlocked)
	}
}
