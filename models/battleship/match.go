package battleship

import (
	"sync"
	"time"

	cerr "github.com/saeidalz13/warzones/internal/error"
)

// Match pairs two sessions for online play. Each peer keeps its own
// authoritative Game; the match only tracks who sits where.
type Match struct {
	code      string
	host      *Player
	join      *Player
	createdAt time.Time
	finished  bool
	mu        sync.Mutex
}

func newMatch(code string, hostSessionID string) *Match {
	return &Match{
		code:      code,
		host:      NewPlayer(true, hostSessionID),
		createdAt: time.Now(),
	}
}

func (m *Match) Code() string {
	return m.code
}

func (m *Match) Host() *Player {
	return m.host
}

func (m *Match) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Match) addJoinPlayer(sessionID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.join != nil {
		return nil, cerr.GameIsFull(m.code)
	}
	m.join = NewPlayer(false, sessionID)
	return m.join, nil
}

// FetchPlayer returns the host seat for true and the join seat for false.
func (m *Match) FetchPlayer(host bool) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if host {
		return m.host
	}
	return m.join
}

func (m *Match) OtherPlayer(p *Player) *Player {
	return m.FetchPlayer(!p.IsHost)
}

func (m *Match) MarkReady(p *Player) {
	m.mu.Lock()
	p.IsReady = true
	m.mu.Unlock()
}

func (m *Match) IsReadyToStart() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.join != nil && m.host.IsReady && m.join.IsReady
}

func (m *Match) Finish() {
	m.mu.Lock()
	m.finished = true
	m.mu.Unlock()
}

func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.finished
}
