package battleship

import (
	"slices"

	cerr "github.com/saeidalz13/warzones/internal/error"
)

type Powerup uint8

const (
	PowerupBlackBox Powerup = iota
	PowerupKryptonLaser
	PowerupCannonBall
)

var Powerups = [...]Powerup{PowerupBlackBox, PowerupKryptonLaser, PowerupCannonBall}

var powerupNames = [...]string{"black_box", "krypton_laser", "cannon_ball"}

func (p Powerup) String() string {
	if int(p) < len(powerupNames) {
		return powerupNames[p]
	}
	return "unknown"
}

func ParsePowerup(s string) (Powerup, error) {
	i := slices.Index(powerupNames[:], s)
	if i < 0 {
		return 0, cerr.ErrInvalidPowerup(s)
	}
	return Powerup(i), nil
}

func (p Powerup) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Powerup) UnmarshalText(b []byte) error {
	parsed, err := ParsePowerup(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// LaserTargets are the cells a krypton laser fired at index would hit:
// the same index on every layer that is still unresolved.
func (v TargetView) LaserTargets(index int) []Target {
	targets := make([]Target, 0, LayerCount)
	for _, layer := range Layers {
		if v.Available(layer, index) {
			targets = append(targets, Target{Layer: layer, Index: index})
		}
	}
	return targets
}

// CannonTargets are the unresolved cells of the 2x2 area anchored at
// index. The area is clipped at the board edge.
func (v TargetView) CannonTargets(layer Layer, anchor int) []Target {
	if !ValidIndex(anchor) {
		return nil
	}
	row, col := RowCol(anchor)
	targets := make([]Target, 0, 4)
	for r := row; r < row+2; r++ {
		for c := col; c < col+2; c++ {
			if !InBounds(r, c) {
				continue
			}
			if i := Index(r, c); v.Available(layer, i) {
				targets = append(targets, Target{Layer: layer, Index: i})
			}
		}
	}
	return targets
}

// ClampSquareAnchor moves a 2x2 anchor so the whole area stays on the
// board.
func ClampSquareAnchor(index int) int {
	row, col := RowCol(index)
	return Index(min(row, BoardSize-2), min(col, BoardSize-2))
}

type Target struct {
	Layer Layer `json:"layer"`
	Index int   `json:"index"`
}
