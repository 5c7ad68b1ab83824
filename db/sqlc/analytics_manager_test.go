package sqlc

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestServerInet(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		expected  string
		expectErr bool
	}{
		{name: "ipv4", addr: "127.0.0.1:7171", expected: "127.0.0.1/32"},
		{name: "ipv6", addr: "[::1]:7171", expected: "::1/128"},
		{name: "no port", addr: "127.0.0.1", expectErr: true},
		{name: "hostname", addr: "localhost:80", expectErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inet, err := ServerInet(test.addr)
			if test.expectErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !inet.Valid || inet.IPNet.String() != test.expected {
				t.Fatalf("expected: %s\t got: %s", test.expected, inet.IPNet.String())
			}
		})
	}
}

func TestAnalyticsManager(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	manager := NewDbManager(New(db))
	inet, err := ServerInet("10.0.0.5:8000")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("increment created", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO game_server_analytics (server_ip, games_created)")).
			WithArgs(inet).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := manager.Analytics.IncrementGamesCreatedCount(context.Background(), inet); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("increment joined", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO game_server_analytics (server_ip, games_joined)")).
			WithArgs(inet).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := manager.Analytics.IncrementGamesJoinedCount(context.Background(), inet); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("get created", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT games_created FROM game_server_analytics")).
			WithArgs(inet).
			WillReturnRows(sqlmock.NewRows([]string{"games_created"}).AddRow(int64(4)))

		count, err := manager.Analytics.GetGamesCreatedCount(context.Background(), inet)
		if err != nil {
			t.Fatal(err)
		}
		if count != 4 {
			t.Fatalf("expected count: %d\t got: %d", 4, count)
		}
	})

	t.Run("get joined fails", func(t *testing.T) {
		queryErr := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT games_joined FROM game_server_analytics")).
			WithArgs(inet).
			WillReturnError(queryErr)

		if _, err := manager.Analytics.GetGamesJoinedCount(context.Background(), inet); !errors.Is(err, queryErr) {
			t.Fatalf("expected error: %v\t got: %v", queryErr, err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
