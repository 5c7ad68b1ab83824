package battleship

import (
	cerr "github.com/saeidalz13/warzones/internal/error"
)

// Snapshot is the serializable form of a Game. Restoring it yields a game
// that resolves every later attack exactly like the original would.
type Snapshot struct {
	Id      string   `json:"id"`
	Sides   [2]*Side `json:"sides"`
	History []Move   `json:"history"`
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Id:      g.id,
		Sides:   [2]*Side{g.sides[SidePlayer].clone(), g.sides[SideOpponent].clone()},
		History: cloneHistory(g.history),
	}
}

func RestoreGame(s Snapshot) (*Game, error) {
	if s.Sides[SidePlayer] == nil || s.Sides[SideOpponent] == nil {
		return nil, cerr.ErrCorruptSnapshot("missing side")
	}
	if s.Id == "" {
		return nil, cerr.ErrCorruptSnapshot("missing game id")
	}

	g := &Game{
		id:      s.Id,
		sides:   [2]*Side{s.Sides[SidePlayer].clone(), s.Sides[SideOpponent].clone()},
		history: cloneHistory(s.History),
	}
	for _, side := range g.sides {
		if side.Ships == nil {
			return nil, cerr.ErrCorruptSnapshot("side without ships")
		}
		for shipType, sh := range side.Ships {
			if sh == nil || sh.Type != shipType {
				return nil, cerr.ErrCorruptSnapshot("ship map mismatch: " + string(shipType))
			}
		}
	}
	return g, nil
}
