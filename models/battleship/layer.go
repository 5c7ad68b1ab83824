package battleship

import (
	"fmt"
	"strings"

	cerr "github.com/saeidalz13/warzones/internal/error"
)

const (
	BoardSize = 4
	CellCount = BoardSize * BoardSize
)

type Layer uint8

const (
	LayerSpace Layer = iota
	LayerSky
	LayerSea
	LayerSub
)

const LayerCount = 4

// Layers in board order, top to bottom.
var Layers = [LayerCount]Layer{LayerSpace, LayerSky, LayerSea, LayerSub}

var layerNames = [LayerCount]string{"space", "sky", "sea", "sub"}

func (l Layer) Valid() bool {
	return l < LayerCount
}

func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
	return layerNames[l]
}

func ParseLayer(s string) (Layer, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, cerr.ErrInvalidLayer(s)
}

func (l Layer) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, cerr.ErrInvalidLayer(l.String())
	}
	return []byte(l.String()), nil
}

func (l *Layer) UnmarshalText(b []byte) error {
	parsed, err := ParseLayer(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (o Orientation) Toggle() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "horizontal":
		*o = Horizontal
	case "vertical":
		*o = Vertical
	default:
		return cerr.ErrInvalidOrientation(string(b))
	}
	return nil
}

// SideID names one of the two boards in a game.
type SideID uint8

const (
	SidePlayer SideID = iota
	SideOpponent
)

func (s SideID) Other() SideID {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

func (s SideID) Valid() bool {
	return s == SidePlayer || s == SideOpponent
}

func (s SideID) String() string {
	if s == SideOpponent {
		return "opponent"
	}
	return "player"
}

func (s SideID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SideID) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*s = SidePlayer
	case "opponent":
		*s = SideOpponent
	default:
		return cerr.ErrInvalidSide(string(b))
	}
	return nil
}

func RowCol(index int) (int, int) {
	return index / BoardSize, index % BoardSize
}

func Index(row, col int) int {
	return row*BoardSize + col
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func ValidIndex(index int) bool {
	return index >= 0 && index < CellCount
}

// Orthogonal returns the in-bound up, down, left and right neighbours of index.
func Orthogonal(index int) []int {
	row, col := RowCol(index)
	neighbours := make([]int, 0, 4)
	for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		r, c := row+d[0], col+d[1]
		if InBounds(r, c) {
			neighbours = append(neighbours, Index(r, c))
		}
	}
	return neighbours
}

// Surrounding returns the in-bound 8-neighbourhood of index.
func Surrounding(index int) []int {
	row, col := RowCol(index)
	neighbours := make([]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if r, c := row+dr, col+dc; InBounds(r, c) {
				neighbours = append(neighbours, Index(r, c))
			}
		}
	}
	return neighbours
}
