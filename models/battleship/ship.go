package battleship

import "slices"

type ShipType string

const (
	Spacecraft ShipType = "Spacecraft"
	FighterJet ShipType = "FighterJet"
	Battleship ShipType = "Battleship"
	Cruiser    ShipType = "Cruiser"
	Submarine  ShipType = "Submarine"

	// Added during combat by the BlackBox powerup.
	ExtraJet ShipType = "ExtraJet"
	// Added to the opponent fleet by mission reinforcements.
	Destroyer ShipType = "Destroyer"
)

type Shape uint8

const (
	ShapeSingle Shape = iota
	ShapeSquare
	ShapeLine
)

func (s Shape) String() string {
	switch s {
	case ShapeSquare:
		return "square"
	case ShapeLine:
		return "line"
	default:
		return "single"
	}
}

type ShipSpec struct {
	Type  ShipType
	Size  int
	Shape Shape
	Layer Layer
}

var shipSpecs = map[ShipType]ShipSpec{
	Spacecraft: {Type: Spacecraft, Size: 4, Shape: ShapeSquare, Layer: LayerSpace},
	FighterJet: {Type: FighterJet, Size: 1, Shape: ShapeSingle, Layer: LayerSky},
	Battleship: {Type: Battleship, Size: 3, Shape: ShapeLine, Layer: LayerSea},
	Cruiser:    {Type: Cruiser, Size: 2, Shape: ShapeLine, Layer: LayerSea},
	Submarine:  {Type: Submarine, Size: 2, Shape: ShapeLine, Layer: LayerSub},
	ExtraJet:   {Type: ExtraJet, Size: 1, Shape: ShapeSingle, Layer: LayerSky},
	Destroyer:  {Type: Destroyer, Size: 2, Shape: ShapeLine, Layer: LayerSea},
}

// StandardFleet is the canonical placement order.
var StandardFleet = []ShipType{Spacecraft, FighterJet, Battleship, Cruiser, Submarine}

func SpecOf(shipType ShipType) (ShipSpec, bool) {
	spec, ok := shipSpecs[shipType]
	return spec, ok
}

type Ship struct {
	Type      ShipType `json:"type"`
	Layer     Layer    `json:"layer"`
	Positions []int    `json:"positions"`
	Hits      []int    `json:"hits"`
}

func NewShip(spec ShipSpec) *Ship {
	return &Ship{
		Type:      spec.Type,
		Layer:     spec.Layer,
		Positions: make([]int, 0, spec.Size),
		Hits:      make([]int, 0, spec.Size),
	}
}

func (sh *Ship) IsPlaced() bool {
	return len(sh.Positions) > 0
}

func (sh *Ship) IsSunk() bool {
	return len(sh.Positions) > 0 && len(sh.Hits) == len(sh.Positions)
}

func (sh *Ship) Occupies(index int) bool {
	return slices.Contains(sh.Positions, index)
}

func (sh *Ship) IsHitAt(index int) bool {
	return slices.Contains(sh.Hits, index)
}

func (sh *Ship) removeHit(index int) {
	if i := slices.Index(sh.Hits, index); i >= 0 {
		sh.Hits = slices.Delete(sh.Hits, i, i+1)
	}
}

func (sh *Ship) removePositions(positions []int) {
	sh.Positions = slices.DeleteFunc(sh.Positions, func(p int) bool {
		return slices.Contains(positions, p)
	})
	sh.Hits = slices.DeleteFunc(sh.Hits, func(p int) bool {
		return slices.Contains(positions, p)
	})
}

func (sh *Ship) clone() *Ship {
	return &Ship{
		Type:      sh.Type,
		Layer:     sh.Layer,
		Positions: slices.Clone(sh.Positions),
		Hits:      slices.Clone(sh.Hits),
	}
}
