package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(WithLogger(zaptest.NewLogger(t)), WithStage(StageDev))
}

func do(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMissions(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedName   string
	}{
		{name: "single mission", path: "/missions/3", expectedStatus: http.StatusOK, expectedName: "The Hydra"},
		{name: "unknown mission", path: "/missions/11", expectedStatus: http.StatusNotFound},
		{name: "non numeric id", path: "/missions/abc", expectedStatus: http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, test.path, nil)
			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status: %d\t got: %d", test.expectedStatus, rec.Code)
			}
			if test.expectedName == "" {
				return
			}
			var m campaign.Mission
			if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
				t.Fatal(err)
			}
			if m.Name != test.expectedName {
				t.Fatalf("expected name: %s\t got: %s", test.expectedName, m.Name)
			}
		})
	}

	t.Run("catalogue", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/missions", nil)
		var c campaign.Catalogue
		if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
			t.Fatal(err)
		}
		if len(c.Missions) != 10 || len(c.Acts) != 3 {
			t.Fatalf("expected 10 missions in 3 acts\t got: %d in %d", len(c.Missions), len(c.Acts))
		}
	})
}

func TestProgress(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/progress/ana", nil)
	var p campaign.Progress
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.HighestUnlocked != 1 {
		t.Fatalf("expected highest unlocked: 1\t got: %d", p.HighestUnlocked)
	}

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedStars  int
	}{
		{name: "locked mission", path: "/progress/ana/missions/2", body: `{"won":true,"accuracy":70}`, expectedStatus: http.StatusForbidden},
		{name: "missing outcome", path: "/progress/ana/missions/1", body: `{"accuracy":70}`, expectedStatus: http.StatusBadRequest},
		{name: "accuracy out of range", path: "/progress/ana/missions/1", body: `{"won":true,"accuracy":170}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown mission", path: "/progress/ana/missions/42", body: `{"won":true,"accuracy":70}`, expectedStatus: http.StatusNotFound},
		{name: "three star win", path: "/progress/ana/missions/1", body: `{"won":true,"accuracy":70}`, expectedStatus: http.StatusOK, expectedStars: 3},
		{name: "unlocked next", path: "/progress/ana/missions/2", body: `{"won":false,"accuracy":20}`, expectedStatus: http.StatusOK, expectedStars: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, test.path, []byte(test.body))
			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status: %d\t got: %d", test.expectedStatus, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var resp RespMissionResult
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Stars != test.expectedStars {
				t.Fatalf("expected stars: %d\t got: %d", test.expectedStars, resp.Stars)
			}
		})
	}

	rec = do(t, s, http.MethodGet, "/progress/ana", nil)
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.HighestUnlocked != 2 || p.TotalStars != 3 {
		t.Fatalf("expected mission 2 unlocked with 3 stars\t got: %d %d", p.HighestUnlocked, p.TotalStars)
	}
	if rec, _ := p.Record(2); rec.Attempts != 1 || rec.Completed {
		t.Fatalf("expected one lost attempt on mission 2\t got: %+v", rec)
	}
}

func TestConcurrentMissionResults(t *testing.T) {
	s := newTestServer(t)
	const posts = 20

	var wg sync.WaitGroup
	codes := make(chan int, posts)
	for range posts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/progress/ben/missions/1", bytes.NewReader([]byte(`{"won":true,"accuracy":50}`)))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("expected status: %d\t got: %d", http.StatusOK, code)
		}
	}

	rec := do(t, s, http.MethodGet, "/progress/ben", nil)
	var p campaign.Progress
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Record(1); got.Attempts != posts {
		t.Fatalf("expected attempts: %d\t got: %d", posts, got.Attempts)
	}
	if s.progress.Len() != 0 {
		t.Fatalf("expected player locks released\t got: %d", s.progress.Len())
	}
}

func TestPlayerLocks(t *testing.T) {
	pl := newPlayerLocks()
	unlock := pl.Lock("ana")

	acquired := make(chan struct{})
	go func() {
		release := pl.Lock("ana")
		close(acquired)
		release()
	}()

	other := pl.Lock("ben")
	other()

	select {
	case <-acquired:
		t.Fatal("expected the second lock on ana to wait")
	default:
	}
	unlock()
	<-acquired
}

func TestSnapshots(t *testing.T) {
	s := newTestServer(t)

	c, err := session.New(session.WithScheduler(session.NewManualScheduler()))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AutoPlace(); err != nil {
		t.Fatal(err)
	}
	blob, err := c.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if rec := do(t, s, http.MethodPut, "/snapshots/"+c.GameId(), blob); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status: %d\t got: %d", http.StatusNoContent, rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/snapshots/"+c.GameId(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status: %d\t got: %d", http.StatusOK, rec.Code)
	}
	restored, err := session.RestoreController(rec.Body.Bytes(), session.WithScheduler(session.NewManualScheduler()))
	if err != nil {
		t.Fatal(err)
	}
	if restored.GameId() != c.GameId() || restored.Phase() != session.PhaseCombat {
		t.Fatalf("expected game %s in combat\t got: %s in %s", c.GameId(), restored.GameId(), restored.Phase())
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           []byte
		expectedStatus int
	}{
		{name: "invalid blob", method: http.MethodPut, path: "/snapshots/bad", body: []byte("{"), expectedStatus: http.StatusBadRequest},
		{name: "too large", method: http.MethodPut, path: "/snapshots/big", body: bytes.Repeat([]byte(" "), maxSnapshotBytes+1), expectedStatus: http.StatusRequestEntityTooLarge},
		{name: "delete", method: http.MethodDelete, path: "/snapshots/" + c.GameId(), expectedStatus: http.StatusNoContent},
		{name: "load deleted", method: http.MethodGet, path: "/snapshots/" + c.GameId(), expectedStatus: http.StatusNotFound},
		{name: "delete missing", method: http.MethodDelete, path: "/snapshots/" + c.GameId(), expectedStatus: http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := do(t, s, test.method, test.path, test.body)
			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status: %d\t got: %d", test.expectedStatus, rec.Code)
			}
		})
	}
}

func TestNewServerRejectsInvalidStage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewServer to panic")
		}
	}()
	NewServer(WithStage("staging"))
}
