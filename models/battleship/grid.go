package battleship

type CellState uint8

const (
	CellEmpty CellState = iota
	CellOccupied
	CellHit
	CellMiss
	CellTreasure
	CellMine
)

func (s CellState) String() string {
	switch s {
	case CellOccupied:
		return "occupied"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	case CellTreasure:
		return "treasure"
	case CellMine:
		return "mine"
	default:
		return "empty"
	}
}

type Cell struct {
	State CellState `json:"state"`
	Ship  ShipType  `json:"ship,omitempty"`
}

// Resolved cells have already been attacked.
func (c Cell) Resolved() bool {
	return c.State == CellHit || c.State == CellMiss
}

type Grid [CellCount]Cell

func (g *Grid) EmptyCells() []int {
	empty := make([]int, 0, CellCount)
	for i, cell := range g {
		if cell.State == CellEmpty {
			empty = append(empty, i)
		}
	}
	return empty
}

func (g *Grid) UnresolvedCells() []int {
	cells := make([]int, 0, CellCount)
	for i, cell := range g {
		if !cell.Resolved() {
			cells = append(cells, i)
		}
	}
	return cells
}
