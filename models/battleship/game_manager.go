package battleship

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/warzones/internal/error"
)

const matchCodeLength = 6

type GameManager interface {
	CreateMatch(hostSessionID string) *Match
	JoinMatch(code, sessionID string) (*Match, *Player, error)
	GetMatch(code string) (*Match, error)
	TerminateMatch(code string)
	CleanupStale(maxAge time.Duration) []string
	Count() int
}

type BattleshipGameManager struct {
	matches map[string]*Match
	mu      sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

func NewBattleshipGameManager() *BattleshipGameManager {
	return &BattleshipGameManager{
		matches: make(map[string]*Match, 10),
	}
}

func (bgm *BattleshipGameManager) CreateMatch(hostSessionID string) *Match {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	code := uuid.NewString()[:matchCodeLength]
	for _, taken := bgm.matches[code]; taken; _, taken = bgm.matches[code] {
		code = uuid.NewString()[:matchCodeLength]
	}

	bgm.matches[code] = newMatch(code, hostSessionID)
	return bgm.matches[code]
}

func (bgm *BattleshipGameManager) JoinMatch(code, sessionID string) (*Match, *Player, error) {
	match, err := bgm.GetMatch(code)
	if err != nil {
		return nil, nil, err
	}

	player, err := match.addJoinPlayer(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return match, player, nil
}

func (bgm *BattleshipGameManager) GetMatch(code string) (*Match, error) {
	bgm.mu.RLock()
	match, prs := bgm.matches[code]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.GameNotExists(code)
	}

	return match, nil
}

func (bgm *BattleshipGameManager) TerminateMatch(code string) {
	bgm.mu.Lock()
	delete(bgm.matches, code)
	bgm.mu.Unlock()
}

// CleanupStale drops finished matches and matches older than maxAge, and
// returns the removed codes.
func (bgm *BattleshipGameManager) CleanupStale(maxAge time.Duration) []string {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	removed := make([]string, 0, 4)
	for code, match := range bgm.matches {
		if match.IsFinished() || time.Since(match.CreatedAt()) > maxAge {
			delete(bgm.matches, code)
			removed = append(removed, code)
		}
	}
	return removed
}

func (bgm *BattleshipGameManager) Count() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()

	return len(bgm.matches)
}
