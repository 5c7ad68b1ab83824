package battleship

import (
	"slices"

	"github.com/google/uuid"
)

// Game is the authoritative combat state for one match: both sides and
// the move log. It is not safe for concurrent use; the session layer
// serializes access.
type Game struct {
	id      string
	sides   [2]*Side
	history []Move
}

// NewGame creates a game in which each side places its own fleet
// sequence. A nil fleet means the standard fleet.
func NewGame(playerFleet, opponentFleet []ShipType) *Game {
	if playerFleet == nil {
		playerFleet = StandardFleet
	}
	if opponentFleet == nil {
		opponentFleet = StandardFleet
	}

	return &Game{
		id:      uuid.NewString(),
		sides:   [2]*Side{NewSide(playerFleet), NewSide(opponentFleet)},
		history: make([]Move, 0, 64),
	}
}

func (g *Game) Id() string {
	return g.id
}

func (g *Game) Side(id SideID) *Side {
	return g.sides[id]
}

// History returns a copy of the move log.
func (g *Game) History() []Move {
	return cloneHistory(g.history)
}

func (g *Game) LastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	return g.history[len(g.history)-1].clone(), true
}

func (g *Game) popMove() Move {
	last := g.history[len(g.history)-1]
	g.history = slices.Delete(g.history, len(g.history)-1, len(g.history))
	return last
}

// View returns the read-only accessor an attacker uses to inspect the
// target side.
func (g *Game) View(target SideID) TargetView {
	return TargetView{game: g, target: target}
}

// TargetView exposes what an attacker may legitimately know about the
// board it is firing at.
type TargetView struct {
	game   *Game
	target SideID
}

// Available reports whether the cell can still be attacked.
func (v TargetView) Available(layer Layer, index int) bool {
	if !layer.Valid() || !ValidIndex(index) {
		return false
	}
	return !v.game.sides[v.target].Grids[layer][index].Resolved()
}

// LayerShipCells is the number of cells the placed ships on a layer
// occupy, i.e. the hits needed to clear that layer.
func (v TargetView) LayerShipCells(layer Layer) int {
	cells := 0
	for _, sh := range v.game.sides[v.target].ShipsOn(layer) {
		cells += len(sh.Positions)
	}
	return cells
}

func (v TargetView) LayerShipCount(layer Layer) int {
	return len(v.game.sides[v.target].ShipsOn(layer))
}

func (v TargetView) UnsunkShips() int {
	return v.game.sides[v.target].UnsunkShips()
}

func (v TargetView) UnhitPositions() int {
	return v.game.sides[v.target].UnhitPositions()
}
