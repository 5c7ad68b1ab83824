package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/saeidalz13/warzones/db/sqlc"
	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/campaign"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("snapshot round trip", func(t *testing.T) {
		blob := []byte(`{"version":1}`)
		if err := m.SaveSnapshot(ctx, "a", blob); err != nil {
			t.Fatal(err)
		}
		blob[0] = 'x'

		got, err := m.LoadSnapshot(ctx, "a")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `{"version":1}` {
			t.Fatalf("expected stored copy\t got: %s", got)
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		if _, err := m.LoadSnapshot(ctx, "b"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
		}
		if err := m.DeleteSnapshot(ctx, "b"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := m.DeleteSnapshot(ctx, "a"); err != nil {
			t.Fatal(err)
		}
		if _, err := m.LoadSnapshot(ctx, "a"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
		}
	})

	t.Run("progress", func(t *testing.T) {
		p, err := m.LoadProgress(ctx, "ana")
		if err != nil {
			t.Fatal(err)
		}
		if p.HighestUnlocked != 1 {
			t.Fatalf("expected highest unlocked: 1\t got: %d", p.HighestUnlocked)
		}

		if _, err := campaign.MustLoadCatalogue().Record(p, 1, true, 70); err != nil {
			t.Fatal(err)
		}
		if err := m.SaveProgress(ctx, "ana", p); err != nil {
			t.Fatal(err)
		}
		p.Missions[1].Stars = 0

		saved, err := m.LoadProgress(ctx, "ana")
		if err != nil {
			t.Fatal(err)
		}
		if rec, _ := saved.Record(1); rec.Stars != 3 || saved.HighestUnlocked != 2 {
			t.Fatalf("expected 3 stars and mission 2 unlocked\t got: %d %d", rec.Stars, saved.HighestUnlocked)
		}
		if err := m.SaveProgress(ctx, "ana", nil); !errors.Is(err, cerr.ErrNilPayload) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrNilPayload, err)
		}
	})
}

func TestPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	pg := NewPostgres(sqlc.New(db))

	t.Run("save snapshot", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots (id, blob, updated_at)")).
			WithArgs("game-1", []byte("blob")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := pg.SaveSnapshot(ctx, "game-1", []byte("blob")); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("load snapshot", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, blob, updated_at FROM snapshots")).
			WithArgs("game-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "blob", "updated_at"}).AddRow("game-1", []byte("blob"), time.Now()))

		blob, err := pg.LoadSnapshot(ctx, "game-1")
		if err != nil {
			t.Fatal(err)
		}
		if string(blob) != "blob" {
			t.Fatalf("expected: blob\t got: %s", blob)
		}
	})

	t.Run("load missing snapshot", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, blob, updated_at FROM snapshots")).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		if _, err := pg.LoadSnapshot(ctx, "nope"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
		}
	})

	t.Run("delete missing snapshot", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM snapshots")).
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := pg.DeleteSnapshot(ctx, "nope"); !errors.Is(err, cerr.ErrSnapshotNotFound) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrSnapshotNotFound, err)
		}
	})

	t.Run("progress without save", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT player, progress, updated_at FROM campaign_progress")).
			WithArgs("ana").
			WillReturnError(sql.ErrNoRows)

		p, err := pg.LoadProgress(ctx, "ana")
		if err != nil {
			t.Fatal(err)
		}
		if p.HighestUnlocked != 1 || len(p.Missions) != 0 {
			t.Fatalf("expected a fresh campaign\t got: %+v", p)
		}
	})

	t.Run("save and load progress", func(t *testing.T) {
		p := campaign.NewProgress()
		if _, err := campaign.MustLoadCatalogue().Record(p, 1, true, 50); err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatal(err)
		}

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_progress (player, progress, updated_at)")).
			WithArgs("ana", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		if err := pg.SaveProgress(ctx, "ana", p); err != nil {
			t.Fatal(err)
		}

		mock.ExpectQuery(regexp.QuoteMeta("SELECT player, progress, updated_at FROM campaign_progress")).
			WithArgs("ana").
			WillReturnRows(sqlmock.NewRows([]string{"player", "progress", "updated_at"}).AddRow("ana", data, time.Now()))
		loaded, err := pg.LoadProgress(ctx, "ana")
		if err != nil {
			t.Fatal(err)
		}
		if rec, _ := loaded.Record(1); !rec.Completed || rec.Stars != 2 {
			t.Fatalf("expected completed with 2 stars\t got: %+v", rec)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
