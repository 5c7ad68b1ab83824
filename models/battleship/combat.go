package battleship

import (
	"slices"

	cerr "github.com/saeidalz13/warzones/internal/error"
)

type Outcome uint8

const (
	OutcomeMiss Outcome = iota
	OutcomeHit
	OutcomeTreasure
	OutcomeMine
	OutcomeShieldBlocked
)

var outcomeNames = [...]string{"miss", "hit", "treasure", "mine", "shield_blocked"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	i := slices.Index(outcomeNames[:], string(b))
	if i < 0 {
		return cerr.ErrInvalidOutcome(string(b))
	}
	*o = Outcome(i)
	return nil
}

type GameOver struct {
	IsOver bool   `json:"is_over"`
	Winner SideID `json:"winner"`
}

// AttackResult is what the resolver hands back after every shot. Ship and
// the sunk fields are only set for OutcomeHit and OutcomeShieldBlocked.
type AttackResult struct {
	Outcome       Outcome  `json:"outcome"`
	Attacker      SideID   `json:"attacker"`
	Layer         Layer    `json:"layer"`
	Index         int      `json:"index"`
	Ship          ShipType `json:"ship,omitempty"`
	Sunk          bool     `json:"sunk,omitempty"`
	SunkPositions []int    `json:"sunk_positions,omitempty"`
	GameOver      GameOver `json:"game_over"`
}

// Continues reports whether the attacker keeps the turn.
func (r AttackResult) Continues() bool {
	return r.Outcome == OutcomeHit || r.Outcome == OutcomeTreasure
}

// ProcessAttack fires at the attacker's opponent. Resolved or out of
// bound cells are rejected without touching any state.
func (g *Game) ProcessAttack(attacker SideID, layer Layer, index int) (AttackResult, error) {
	if !layer.Valid() || !ValidIndex(index) || !attacker.Valid() {
		return AttackResult{}, cerr.InvalidAttackTarget(layer.String(), index)
	}

	target := g.sides[attacker.Other()]
	cell := &target.Grids[layer][index]
	if cell.Resolved() {
		return AttackResult{}, cerr.InvalidAttackTarget(layer.String(), index)
	}

	res := AttackResult{Attacker: attacker, Layer: layer, Index: index}
	shots := &g.sides[attacker].Shots
	shots.Total++

	switch cell.State {
	case CellMine:
		*cell = Cell{State: CellMiss}
		res.Outcome = OutcomeMine

	case CellTreasure:
		*cell = Cell{State: CellHit}
		shots.Hits++
		res.Outcome = OutcomeTreasure

	case CellOccupied:
		sh := target.ship(cell.Ship)
		cell.State = CellHit
		sh.Hits = append(sh.Hits, index)
		shots.Hits++

		res.Outcome = OutcomeHit
		res.Ship = sh.Type
		if sh.IsSunk() {
			res.Sunk = true
			res.SunkPositions = slices.Clone(sh.Positions)
		}

	default:
		*cell = Cell{State: CellMiss}
		res.Outcome = OutcomeMiss
	}

	g.history = append(g.history, Move{
		Kind: MoveAttack,
		Attack: &AttackMove{
			Attacker: attacker,
			Layer:    layer,
			Index:    index,
			Outcome:  res.Outcome,
			Ship:     res.Ship,
		},
	})

	res.GameOver = g.CheckGameOver()
	return res, nil
}

// ApplyRemoteResult records a shot whose outcome was decided by the peer
// that owns the target board. The local board copy is updated to agree
// with the peer and the game over state is recomputed locally.
func (g *Game) ApplyRemoteResult(remote AttackResult) (AttackResult, error) {
	attacker, layer, index := remote.Attacker, remote.Layer, remote.Index
	if !layer.Valid() || !ValidIndex(index) || !attacker.Valid() {
		return AttackResult{}, cerr.InvalidAttackTarget(layer.String(), index)
	}

	target := g.sides[attacker.Other()]
	cell := &target.Grids[layer][index]
	if cell.Resolved() {
		return AttackResult{}, cerr.InvalidAttackTarget(layer.String(), index)
	}

	res := AttackResult{Attacker: attacker, Layer: layer, Index: index, Outcome: remote.Outcome}
	shots := &g.sides[attacker].Shots
	shots.Total++

	switch remote.Outcome {
	case OutcomeHit:
		shots.Hits++
		*cell = Cell{State: CellHit, Ship: remote.Ship}
		res.Ship = remote.Ship
		if sh, ok := target.Ships[remote.Ship]; ok {
			if !sh.Occupies(index) {
				sh.Positions = append(sh.Positions, index)
			}
			if !sh.IsHitAt(index) {
				sh.Hits = append(sh.Hits, index)
			}
			res.Sunk = sh.IsSunk()
			if res.Sunk {
				res.SunkPositions = slices.Clone(sh.Positions)
			}
		}

	case OutcomeTreasure:
		shots.Hits++
		*cell = Cell{State: CellHit}

	default:
		res.Outcome = OutcomeMiss
		if remote.Outcome == OutcomeMine {
			res.Outcome = OutcomeMine
		}
		if cell.State == CellOccupied {
			if sh, ok := target.Ships[cell.Ship]; ok {
				sh.removePositions([]int{index})
			}
		}
		*cell = Cell{State: CellMiss}
	}

	g.history = append(g.history, Move{
		Kind: MoveAttack,
		Attack: &AttackMove{
			Attacker: attacker,
			Layer:    layer,
			Index:    index,
			Outcome:  res.Outcome,
			Ship:     res.Ship,
		},
	})

	res.GameOver = g.CheckGameOver()
	return res, nil
}

// UndoLastAttack reverts the most recent move if it is an attack.
func (g *Game) UndoLastAttack() (AttackMove, bool) {
	last, ok := g.LastMove()
	if !ok || last.Kind != MoveAttack {
		return AttackMove{}, false
	}
	a := g.popMove().Attack

	target := g.sides[a.Attacker.Other()]
	shots := &g.sides[a.Attacker].Shots
	cell := &target.Grids[a.Layer][a.Index]
	shots.Total--

	switch a.Outcome {
	case OutcomeHit:
		shots.Hits--
		if sh, ok := target.Ships[a.Ship]; ok {
			sh.removeHit(a.Index)
		}
		*cell = Cell{State: CellOccupied, Ship: a.Ship}

	case OutcomeTreasure:
		shots.Hits--
		*cell = Cell{State: CellTreasure}

	case OutcomeMine:
		*cell = Cell{State: CellMine}

	default:
		*cell = Cell{}
	}
	return *a, true
}

// CheckGameOver reports the winner once one side has lost every placed
// ship.
func (g *Game) CheckGameOver() GameOver {
	for _, side := range [2]SideID{SidePlayer, SideOpponent} {
		if g.sides[side].HasLost() {
			return GameOver{IsOver: true, Winner: side.Other()}
		}
	}
	return GameOver{}
}
