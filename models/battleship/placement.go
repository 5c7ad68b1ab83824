package battleship

import (
	"math/rand"
	"slices"
)

const randomPlacementAttempts = 100

type PlacementStatus uint8

const (
	PlacementOK PlacementStatus = iota
	PlacementNoFit
	PlacementOccupied
	PlacementWrongLayer
	PlacementOutOfOrder
	PlacementFleetComplete
	PlacementUnknownShip
)

func (s PlacementStatus) String() string {
	switch s {
	case PlacementOK:
		return "ok"
	case PlacementNoFit:
		return "no_fit"
	case PlacementOccupied:
		return "occupied"
	case PlacementWrongLayer:
		return "wrong_layer"
	case PlacementOutOfOrder:
		return "out_of_order"
	case PlacementFleetComplete:
		return "fleet_complete"
	default:
		return "unknown_ship"
	}
}

func (s PlacementStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type PlacementResult struct {
	Status    PlacementStatus `json:"status"`
	Side      SideID          `json:"side"`
	Ship      ShipType        `json:"ship"`
	Layer     Layer           `json:"layer"`
	Positions []int           `json:"positions,omitempty"`
}

func (r PlacementResult) Ok() bool {
	return r.Status == PlacementOK
}

// CalculatePositions returns the cells a ship would occupy from anchor,
// or nil when the shape does not fit on the board.
func CalculatePositions(layer Layer, anchor int, shipType ShipType, orientation Orientation) []int {
	spec, ok := SpecOf(shipType)
	if !ok || !layer.Valid() || !ValidIndex(anchor) {
		return nil
	}
	row, col := RowCol(anchor)

	switch spec.Shape {
	case ShapeSingle:
		return []int{anchor}

	case ShapeSquare:
		if row > BoardSize-2 || col > BoardSize-2 {
			return nil
		}
		return []int{anchor, anchor + 1, anchor + BoardSize, anchor + BoardSize + 1}

	case ShapeLine:
		positions := make([]int, 0, spec.Size)
		if orientation == Horizontal {
			if col+spec.Size > BoardSize {
				return nil
			}
			for k := 0; k < spec.Size; k++ {
				positions = append(positions, anchor+k)
			}
			return positions
		}
		if row+spec.Size > BoardSize {
			return nil
		}
		for k := 0; k < spec.Size; k++ {
			positions = append(positions, anchor+k*BoardSize)
		}
		return positions
	}
	return nil
}

func (g *Game) IsValidPlacement(side SideID, layer Layer, shipType ShipType, positions []int) bool {
	return g.checkPlacement(side, layer, shipType, positions) == PlacementOK
}

func (g *Game) checkPlacement(side SideID, layer Layer, shipType ShipType, positions []int) PlacementStatus {
	spec, ok := SpecOf(shipType)
	if !ok {
		return PlacementUnknownShip
	}
	if spec.Layer != layer {
		return PlacementWrongLayer
	}
	if len(positions) == 0 {
		return PlacementNoFit
	}

	grid := &g.sides[side].Grids[layer]
	for _, p := range positions {
		if !ValidIndex(p) {
			return PlacementNoFit
		}
		if grid[p].State != CellEmpty {
			return PlacementOccupied
		}
	}
	return PlacementOK
}

// PlaceShip places the next ship of the side's fleet sequence. Failures
// are reported through the result status and leave the board untouched.
func (g *Game) PlaceShip(side SideID, shipType ShipType, anchor int, layer Layer, orientation Orientation) PlacementResult {
	next, ok := g.sides[side].NextShip()
	if !ok {
		return PlacementResult{Status: PlacementFleetComplete, Side: side, Ship: shipType, Layer: layer}
	}
	if next != shipType {
		return PlacementResult{Status: PlacementOutOfOrder, Side: side, Ship: shipType, Layer: layer}
	}
	return g.place(side, shipType, anchor, layer, orientation, true)
}

// PlaceNextShip places whatever ship is next in the side's sequence on
// that ship's own layer.
func (g *Game) PlaceNextShip(side SideID, anchor int, orientation Orientation) PlacementResult {
	next, ok := g.sides[side].NextShip()
	if !ok {
		return PlacementResult{Status: PlacementFleetComplete, Side: side}
	}
	spec, _ := SpecOf(next)
	return g.place(side, next, anchor, spec.Layer, orientation, true)
}

func (g *Game) place(side SideID, shipType ShipType, anchor int, layer Layer, orientation Orientation, fleet bool) PlacementResult {
	res := PlacementResult{Side: side, Ship: shipType, Layer: layer}

	spec, ok := SpecOf(shipType)
	if !ok {
		res.Status = PlacementUnknownShip
		return res
	}
	if spec.Layer != layer {
		res.Status = PlacementWrongLayer
		return res
	}

	return g.placeAt(res, CalculatePositions(layer, anchor, shipType, orientation), fleet)
}

func (g *Game) placeAt(res PlacementResult, positions []int, fleet bool) PlacementResult {
	side, shipType, layer := res.Side, res.Ship, res.Layer
	if res.Status = g.checkPlacement(side, layer, shipType, positions); res.Status != PlacementOK {
		return res
	}

	s := g.sides[side]
	sh := s.ship(shipType)
	for _, p := range positions {
		s.Grids[layer][p] = Cell{State: CellOccupied, Ship: shipType}
	}
	sh.Positions = append(sh.Positions, positions...)
	if fleet {
		s.Placed++
	}

	g.history = append(g.history, Move{
		Kind: MovePlacement,
		Placement: &PlacementMove{
			Side:      side,
			Ship:      shipType,
			Layer:     layer,
			Positions: slices.Clone(positions),
			Fleet:     fleet,
		},
	})

	res.Positions = positions
	return res
}

// ShipLayout is a placed ship as announced to a peer.
type ShipLayout struct {
	Type      ShipType `json:"type"`
	Positions []int    `json:"positions"`
}

// Layouts lists the side's placed ships.
func (s *Side) Layouts() []ShipLayout {
	layouts := make([]ShipLayout, 0, len(s.Ships))
	for _, layer := range Layers {
		for _, sh := range s.ShipsOn(layer) {
			layouts = append(layouts, ShipLayout{Type: sh.Type, Positions: slices.Clone(sh.Positions)})
		}
	}
	return layouts
}

// LoadFleet places ships at positions chosen elsewhere, e.g. the fleet a
// peer announced. Ships of the side's fleet sequence advance its pointer.
func (g *Game) LoadFleet(side SideID, layouts []ShipLayout) []PlacementResult {
	results := make([]PlacementResult, 0, len(layouts))
	for _, l := range layouts {
		spec, ok := SpecOf(l.Type)
		if !ok {
			results = append(results, PlacementResult{Status: PlacementUnknownShip, Side: side, Ship: l.Type})
			continue
		}
		fleet := slices.Contains(g.sides[side].Fleet, l.Type)
		res := PlacementResult{Side: side, Ship: l.Type, Layer: spec.Layer}
		results = append(results, g.placeAt(res, slices.Clone(l.Positions), fleet))
	}
	return results
}

// UndoLastPlacement reverts the most recent move if it is a placement.
func (g *Game) UndoLastPlacement() (PlacementMove, bool) {
	last, ok := g.LastMove()
	if !ok || last.Kind != MovePlacement {
		return PlacementMove{}, false
	}
	p := g.popMove().Placement

	s := g.sides[p.Side]
	for _, pos := range p.Positions {
		s.Grids[p.Layer][pos] = Cell{}
	}
	if sh, ok := s.Ships[p.Ship]; ok {
		sh.removePositions(p.Positions)
	}
	if p.Fleet && s.Placed > 0 {
		s.Placed--
	}
	return *p, true
}

// PlaceFleetRandomly places every remaining ship of the side's fleet at
// random anchors and orientations.
func (g *Game) PlaceFleetRandomly(side SideID, rng *rand.Rand) []PlacementResult {
	results := make([]PlacementResult, 0, len(g.sides[side].Fleet))
	for !g.sides[side].PlacementComplete() {
		next, _ := g.sides[side].NextShip()
		res := g.placeRandom(side, next, rng, true)
		results = append(results, res)
		if !res.Ok() {
			// Skip a ship that does not fit anywhere rather than loop forever.
			g.sides[side].Placed++
		}
	}
	return results
}

// AddReinforcement places an extra ship outside the fleet sequence using
// the same random algorithm.
func (g *Game) AddReinforcement(side SideID, shipType ShipType, rng *rand.Rand) PlacementResult {
	return g.placeRandom(side, shipType, rng, false)
}

func (g *Game) placeRandom(side SideID, shipType ShipType, rng *rand.Rand, fleet bool) PlacementResult {
	spec, ok := SpecOf(shipType)
	if !ok {
		return PlacementResult{Status: PlacementUnknownShip, Side: side, Ship: shipType}
	}

	res := PlacementResult{Status: PlacementNoFit, Side: side, Ship: shipType, Layer: spec.Layer}
	for attempt := 0; attempt < randomPlacementAttempts; attempt++ {
		anchor := rng.Intn(CellCount)
		orientation := Horizontal
		if rng.Intn(2) == 1 {
			orientation = Vertical
		}
		if res = g.place(side, shipType, anchor, spec.Layer, orientation, fleet); res.Ok() {
			return res
		}
	}
	return res
}

// AddExtraUnit drops an ExtraJet on an empty Sky cell of the side.
func (g *Game) AddExtraUnit(side SideID, index int) PlacementResult {
	return g.place(side, ExtraJet, index, LayerSky, Horizontal, false)
}

// PlaceTreasure puts the side's treasure chest on a random empty Sub
// cell. A side holds at most one chest.
func (g *Game) PlaceTreasure(side SideID, rng *rand.Rand) (int, bool) {
	empty := g.sides[side].Grids[LayerSub].EmptyCells()
	if len(empty) == 0 {
		return -1, false
	}
	index := empty[rng.Intn(len(empty))]
	return index, g.PlaceTreasureAt(side, index)
}

func (g *Game) PlaceTreasureAt(side SideID, index int) bool {
	s := g.sides[side]
	if len(s.Treasure) > 0 || !ValidIndex(index) || s.Grids[LayerSub][index].State != CellEmpty {
		return false
	}
	s.Grids[LayerSub][index] = Cell{State: CellTreasure}
	s.Treasure = append(s.Treasure, index)
	return true
}

// PlaceMines hides up to n mines on random empty cells of a layer and
// returns where they went.
func (g *Game) PlaceMines(side SideID, layer Layer, n int, rng *rand.Rand) []int {
	empty := g.sides[side].Grids[layer].EmptyCells()
	rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })
	if n > len(empty) {
		n = len(empty)
	}

	mines := make([]int, 0, n)
	for _, index := range empty[:n] {
		if g.PlaceMineAt(side, layer, index) {
			mines = append(mines, index)
		}
	}
	slices.Sort(mines)
	return mines
}

func (g *Game) PlaceMineAt(side SideID, layer Layer, index int) bool {
	if !layer.Valid() || !ValidIndex(index) {
		return false
	}
	cell := &g.sides[side].Grids[layer][index]
	if cell.State != CellEmpty {
		return false
	}
	*cell = Cell{State: CellMine}
	return true
}
