package battleship

import (
	"math/rand"
	"slices"
	"testing"
)

func TestCalculatePositions(t *testing.T) {
	tests := []struct {
		name        string
		layer       Layer
		anchor      int
		ship        ShipType
		orientation Orientation
		expected    []int
	}{
		{name: "line 3 horizontal", layer: LayerSea, anchor: 4, ship: Battleship, orientation: Horizontal, expected: []int{4, 5, 6}},
		{name: "line 3 vertical", layer: LayerSea, anchor: 4, ship: Battleship, orientation: Vertical, expected: []int{4, 8, 12}},
		{name: "line 3 horizontal past edge", layer: LayerSea, anchor: 6, ship: Battleship, orientation: Horizontal, expected: nil},
		{name: "line 3 vertical past edge", layer: LayerSea, anchor: 8, ship: Battleship, orientation: Vertical, expected: nil},
		{name: "line 2 last column vertical", layer: LayerSub, anchor: 3, ship: Submarine, orientation: Vertical, expected: []int{3, 7}},
		{name: "square top left", layer: LayerSpace, anchor: 0, ship: Spacecraft, orientation: Horizontal, expected: []int{0, 1, 4, 5}},
		{name: "square inner", layer: LayerSpace, anchor: 10, ship: Spacecraft, orientation: Vertical, expected: []int{10, 11, 14, 15}},
		{name: "square last column", layer: LayerSpace, anchor: 3, ship: Spacecraft, orientation: Horizontal, expected: nil},
		{name: "square last row", layer: LayerSpace, anchor: 12, ship: Spacecraft, orientation: Horizontal, expected: nil},
		{name: "single", layer: LayerSky, anchor: 15, ship: FighterJet, orientation: Vertical, expected: []int{15}},
		{name: "anchor out of bound", layer: LayerSky, anchor: 16, ship: FighterJet, orientation: Horizontal, expected: nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := CalculatePositions(test.layer, test.anchor, test.ship, test.orientation)
			if !slices.Equal(got, test.expected) {
				t.Fatalf("expected positions: %v\t got: %v", test.expected, got)
			}
		})
	}
}

func TestPlaceShipStatus(t *testing.T) {
	g := NewGame(nil, nil)

	res := g.PlaceShip(SidePlayer, FighterJet, 0, LayerSky, Horizontal)
	if res.Status != PlacementOutOfOrder {
		t.Fatalf("expected status: %s\t got: %s", PlacementOutOfOrder, res.Status)
	}

	res = g.PlaceShip(SidePlayer, Spacecraft, 0, LayerSea, Horizontal)
	if res.Status != PlacementWrongLayer {
		t.Fatalf("expected status: %s\t got: %s", PlacementWrongLayer, res.Status)
	}

	res = g.PlaceShip(SidePlayer, Spacecraft, 15, LayerSpace, Horizontal)
	if res.Status != PlacementNoFit {
		t.Fatalf("expected status: %s\t got: %s", PlacementNoFit, res.Status)
	}
	if len(g.History()) != 0 {
		t.Fatalf("expected no history after failed placements\t got: %d", len(g.History()))
	}

	res = g.PlaceShip(SidePlayer, Spacecraft, 5, LayerSpace, Horizontal)
	if !res.Ok() || !slices.Equal(res.Positions, []int{5, 6, 9, 10}) {
		t.Fatalf("expected ok at [5 6 9 10]\t got: %s %v", res.Status, res.Positions)
	}

	g.PlaceShip(SidePlayer, FighterJet, 0, LayerSky, Horizontal)
	g.PlaceShip(SidePlayer, Battleship, 0, LayerSea, Horizontal)

	res = g.PlaceShip(SidePlayer, Cruiser, 1, LayerSea, Vertical)
	if res.Status != PlacementOccupied {
		t.Fatalf("expected status: %s\t got: %s", PlacementOccupied, res.Status)
	}
}

func TestPlacementUndoRoundTrip(t *testing.T) {
	g := NewGame(nil, nil)
	before := g.Side(SidePlayer).Grids

	placements := []struct {
		ship        ShipType
		anchor      int
		layer       Layer
		orientation Orientation
	}{
		{Spacecraft, 10, LayerSpace, Horizontal},
		{FighterJet, 7, LayerSky, Horizontal},
		{Battleship, 1, LayerSea, Vertical},
		{Cruiser, 12, LayerSea, Horizontal},
		{Submarine, 0, LayerSub, Horizontal},
	}

	for _, p := range placements {
		positions := CalculatePositions(p.layer, p.anchor, p.ship, p.orientation)
		if !g.IsValidPlacement(SidePlayer, p.layer, p.ship, positions) {
			t.Fatalf("expected valid placement for %s at %d", p.ship, p.anchor)
		}

		res := g.PlaceShip(SidePlayer, p.ship, p.anchor, p.layer, p.orientation)
		if !res.Ok() {
			t.Fatalf("expected ok for %s\t got: %s", p.ship, res.Status)
		}

		side := g.Side(SidePlayer)
		if !slices.Equal(side.Ships[p.ship].Positions, positions) {
			t.Fatalf("expected ship positions: %v\t got: %v", positions, side.Ships[p.ship].Positions)
		}
		for _, pos := range positions {
			cell := side.Cell(p.layer, pos)
			if cell.State != CellOccupied || cell.Ship != p.ship {
				t.Fatalf("expected cell %d occupied by %s\t got: %v", pos, p.ship, cell)
			}
		}
	}

	if !g.Side(SidePlayer).PlacementComplete() {
		t.Fatal("expected placement complete")
	}

	for i := len(placements) - 1; i >= 0; i-- {
		undone, ok := g.UndoLastPlacement()
		if !ok || undone.Ship != placements[i].ship {
			t.Fatalf("expected to undo %s\t got: %s (%t)", placements[i].ship, undone.Ship, ok)
		}
		if next, _ := g.Side(SidePlayer).NextShip(); next != placements[i].ship {
			t.Fatalf("expected pointer back at %s\t got: %s", placements[i].ship, next)
		}
	}

	if g.Side(SidePlayer).Grids != before {
		t.Fatal("expected grids restored to their pre-placement state")
	}
	for _, sh := range g.Side(SidePlayer).Ships {
		if sh.IsPlaced() {
			t.Fatalf("expected %s to have no positions\t got: %v", sh.Type, sh.Positions)
		}
	}
	if _, ok := g.UndoLastPlacement(); ok {
		t.Fatal("expected nothing left to undo")
	}
}

func TestReducedFleetSequence(t *testing.T) {
	fleet := []ShipType{Spacecraft, FighterJet, Battleship, Cruiser}
	g := NewGame(fleet, nil)

	results := g.PlaceFleetRandomly(SidePlayer, rand.New(rand.NewSource(3)))
	if len(results) != len(fleet) {
		t.Fatalf("expected %d placements\t got: %d", len(fleet), len(results))
	}
	if _, ok := g.Side(SidePlayer).Ships[Submarine]; ok {
		t.Fatal("expected no submarine in a reduced fleet")
	}
	if len(g.Side(SidePlayer).ShipsOn(LayerSub)) != 0 {
		t.Fatal("expected empty sub layer")
	}
}

func TestRandomPlacementFillsFleet(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		g := NewGame(nil, nil)
		rng := rand.New(rand.NewSource(seed))

		for _, res := range g.PlaceFleetRandomly(SideOpponent, rng) {
			if !res.Ok() {
				t.Fatalf("seed %d: expected ok for %s\t got: %s", seed, res.Ship, res.Status)
			}
		}
		if res := g.AddReinforcement(SideOpponent, Destroyer, rng); !res.Ok() {
			t.Fatalf("seed %d: expected destroyer placed\t got: %s", seed, res.Status)
		}

		index, ok := g.PlaceTreasure(SideOpponent, rng)
		if !ok {
			t.Fatalf("seed %d: expected treasure placed", seed)
		}
		if cell := g.Side(SideOpponent).Cell(LayerSub, index); cell.State != CellTreasure {
			t.Fatalf("seed %d: expected treasure cell\t got: %s", seed, cell.State)
		}
		if _, ok := g.PlaceTreasure(SideOpponent, rng); ok {
			t.Fatalf("seed %d: expected a single chest per side", seed)
		}

		occupied := 0
		for _, grid := range g.Side(SideOpponent).Grids {
			for _, cell := range grid {
				if cell.State == CellOccupied {
					occupied++
				}
			}
		}
		// 4 + 1 + 3 + 2 + 2 + destroyer 2
		if occupied != 14 {
			t.Fatalf("seed %d: expected 14 occupied cells\t got: %d", seed, occupied)
		}
	}
}

func TestExtraUnitUndo(t *testing.T) {
	g := NewGame(nil, nil)
	g.PlaceFleetRandomly(SidePlayer, rand.New(rand.NewSource(1)))

	sky := g.Side(SidePlayer).Grids[LayerSky].EmptyCells()
	res := g.AddExtraUnit(SidePlayer, sky[0])
	if !res.Ok() {
		t.Fatalf("expected extra unit placed\t got: %s", res.Status)
	}
	if !g.Side(SidePlayer).Ships[ExtraJet].IsPlaced() {
		t.Fatal("expected extra jet to be placed")
	}

	placed := g.Side(SidePlayer).Placed
	if _, ok := g.UndoLastPlacement(); !ok {
		t.Fatal("expected undo of extra unit")
	}
	if g.Side(SidePlayer).Placed != placed {
		t.Fatalf("expected fleet pointer untouched: %d\t got: %d", placed, g.Side(SidePlayer).Placed)
	}
	if g.Side(SidePlayer).Ships[ExtraJet].IsPlaced() {
		t.Fatal("expected extra jet removed")
	}
}

func TestLoadFleetFromLayouts(t *testing.T) {
	src := NewGame(nil, nil)
	src.PlaceFleetRandomly(SidePlayer, rand.New(rand.NewSource(4)))
	src.AddExtraUnit(SidePlayer, src.Side(SidePlayer).Grids[LayerSky].EmptyCells()[0])
	layouts := src.Side(SidePlayer).Layouts()

	dst := NewGame(nil, nil)
	for _, res := range dst.LoadFleet(SideOpponent, layouts) {
		if !res.Ok() {
			t.Fatalf("expected %s to load\t got: %s", res.Ship, res.Status)
		}
	}

	side := dst.Side(SideOpponent)
	if !side.PlacementComplete() {
		t.Fatalf("expected placement complete\t got: %d of %d", side.Placed, len(side.Fleet))
	}
	if side.Grids != src.Side(SidePlayer).Grids {
		t.Fatal("expected identical grids after loading the layouts")
	}

	bad := dst.LoadFleet(SidePlayer, []ShipLayout{{Type: "Zeppelin", Positions: []int{0}}})
	if bad[0].Status != PlacementUnknownShip {
		t.Fatalf("expected status: %s\t got: %s", PlacementUnknownShip, bad[0].Status)
	}
}
