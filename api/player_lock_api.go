package api

import "sync"

type playerLock struct {
	mu      sync.Mutex
	holders int
}

// playerLocks serializes read-modify-write cycles on one player's
// campaign save. Entries are dropped once nobody holds or waits on them.
type playerLocks struct {
	locks map[string]*playerLock
	mu    sync.Mutex
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[string]*playerLock)}
}

// Lock blocks until the player's save is free and returns the unlock
// func.
func (pl *playerLocks) Lock(player string) func() {
	pl.mu.Lock()
	l, ok := pl.locks[player]
	if !ok {
		l = &playerLock{}
		pl.locks[player] = l
	}
	l.holders++
	pl.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		pl.mu.Lock()
		l.holders--
		if l.holders == 0 {
			delete(pl.locks, player)
		}
		pl.mu.Unlock()
	}
}

func (pl *playerLocks) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.locks)
}
