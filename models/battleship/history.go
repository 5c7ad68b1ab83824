package battleship

import "slices"

type MoveKind uint8

const (
	MovePlacement MoveKind = iota
	MoveAttack
)

// Move is one entry of the append-only game log. Exactly one of
// Placement or Attack is set, matching Kind.
type Move struct {
	Kind      MoveKind       `json:"kind"`
	Placement *PlacementMove `json:"placement,omitempty"`
	Attack    *AttackMove    `json:"attack,omitempty"`
}

type PlacementMove struct {
	Side      SideID   `json:"side"`
	Ship      ShipType `json:"ship"`
	Layer     Layer    `json:"layer"`
	Positions []int    `json:"positions"`
	// Fleet placements advance the side's placement pointer.
	Fleet bool `json:"fleet"`
}

type AttackMove struct {
	Attacker SideID   `json:"attacker"`
	Layer    Layer    `json:"layer"`
	Index    int      `json:"index"`
	Outcome  Outcome  `json:"outcome"`
	Ship     ShipType `json:"ship,omitempty"`
}

func (m AttackMove) Hit() bool {
	return m.Outcome == OutcomeHit || m.Outcome == OutcomeTreasure
}

func (m Move) clone() Move {
	c := Move{Kind: m.Kind}
	if m.Placement != nil {
		p := *m.Placement
		p.Positions = slices.Clone(p.Positions)
		c.Placement = &p
	}
	if m.Attack != nil {
		a := *m.Attack
		c.Attack = &a
	}
	return c
}

func cloneHistory(history []Move) []Move {
	c := make([]Move, len(history))
	for i, m := range history {
		c[i] = m.clone()
	}
	return c
}
