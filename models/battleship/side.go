package battleship

import (
	"maps"
	"slices"
)

type Shots struct {
	Total int `json:"total"`
	Hits  int `json:"hits"`
}

// Accuracy in percent.
func (s Shots) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total) * 100
}

// Side is one player's complete board: the four layer grids, its ships,
// the shots it fired and where it is in the placement sequence.
type Side struct {
	Grids    [LayerCount]Grid   `json:"grids"`
	Ships    map[ShipType]*Ship `json:"ships"`
	Shots    Shots              `json:"shots"`
	Treasure []int              `json:"treasure"`
	Fleet    []ShipType         `json:"fleet"`
	Placed   int                `json:"placed"`
}

func NewSide(fleet []ShipType) *Side {
	s := &Side{
		Ships:    make(map[ShipType]*Ship, len(fleet)+1),
		Treasure: make([]int, 0, 1),
		Fleet:    slices.Clone(fleet),
	}
	for _, shipType := range fleet {
		s.ship(shipType)
	}
	s.ship(ExtraJet)
	return s
}

// ship returns the ship of that type, creating it on first use.
func (s *Side) ship(shipType ShipType) *Ship {
	if sh, ok := s.Ships[shipType]; ok {
		return sh
	}
	spec, ok := SpecOf(shipType)
	if !ok {
		return nil
	}
	sh := NewShip(spec)
	s.Ships[shipType] = sh
	return sh
}

func (s *Side) Ship(shipType ShipType) (*Ship, bool) {
	sh, ok := s.Ships[shipType]
	return sh, ok
}

func (s *Side) Cell(layer Layer, index int) Cell {
	return s.Grids[layer][index]
}

func (s *Side) NextShip() (ShipType, bool) {
	if s.Placed >= len(s.Fleet) {
		return "", false
	}
	return s.Fleet[s.Placed], true
}

func (s *Side) PlacementComplete() bool {
	return s.Placed >= len(s.Fleet)
}

// HasLost reports whether every placed ship is sunk. Ships that were
// never placed do not count, and a side with nothing placed cannot lose.
func (s *Side) HasLost() bool {
	placed := 0
	for _, sh := range s.Ships {
		if !sh.IsPlaced() {
			continue
		}
		placed++
		if !sh.IsSunk() {
			return false
		}
	}
	return placed > 0
}

func (s *Side) UnsunkShips() int {
	count := 0
	for _, sh := range s.Ships {
		if sh.IsPlaced() && !sh.IsSunk() {
			count++
		}
	}
	return count
}

func (s *Side) UnhitPositions() int {
	count := 0
	for _, sh := range s.Ships {
		count += len(sh.Positions) - len(sh.Hits)
	}
	return count
}

func (s *Side) SunkShips() []ShipType {
	sunk := make([]ShipType, 0, len(s.Ships))
	for _, sh := range s.Ships {
		if sh.IsSunk() {
			sunk = append(sunk, sh.Type)
		}
	}
	slices.Sort(sunk)
	return sunk
}

// ShipsOn returns the placed ships on a layer in a stable order.
func (s *Side) ShipsOn(layer Layer) []*Ship {
	ships := make([]*Ship, 0, 2)
	for _, shipType := range slices.Sorted(maps.Keys(s.Ships)) {
		sh := s.Ships[shipType]
		if sh.Layer == layer && sh.IsPlaced() {
			ships = append(ships, sh)
		}
	}
	return ships
}

func (s *Side) HasTreasureAt(index int) bool {
	return slices.Contains(s.Treasure, index)
}

func (s *Side) clone() *Side {
	c := &Side{
		Grids:    s.Grids,
		Ships:    make(map[ShipType]*Ship, len(s.Ships)),
		Shots:    s.Shots,
		Treasure: slices.Clone(s.Treasure),
		Fleet:    slices.Clone(s.Fleet),
		Placed:   s.Placed,
	}
	for shipType, sh := range s.Ships {
		c.Ships[shipType] = sh.clone()
	}
	return c
}
