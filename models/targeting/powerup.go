package targeting

import (
	mb "github.com/saeidalz13/warzones/models/battleship"
)

const strategicPowerupChance = 0.7

// FleetStatus is what the computer knows about the fleet it attacks
// when choosing a powerup.
type FleetStatus interface {
	UnsunkShips() int
	UnhitPositions() int
}

// ChoosePowerup usually picks by the state of the enemy fleet: the cannon
// while many ships float, the laser while many cells remain.
func (a *AI) ChoosePowerup(status FleetStatus) mb.Powerup {
	if a.rng.Float64() >= strategicPowerupChance {
		return mb.Powerups[a.rng.Intn(len(mb.Powerups))]
	}

	switch {
	case status.UnsunkShips() >= 3:
		return mb.PowerupCannonBall
	case status.UnhitPositions() >= 5:
		return mb.PowerupKryptonLaser
	default:
		return mb.PowerupBlackBox
	}
}

// LaserTarget picks an index that is still open on at least one layer.
func (a *AI) LaserTarget(view BoardView) (int, bool) {
	candidates := make([]int, 0, mb.CellCount)
	for i := 0; i < mb.CellCount; i++ {
		for _, layer := range mb.Layers {
			if a.available(view, layer, i) {
				candidates = append(candidates, i)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[a.rng.Intn(len(candidates))], true
}

// CannonTarget anchors the cannon where the computer would have fired
// anyway when that is on the sea, otherwise somewhere open. The anchor
// always keeps the whole 2x2 area on the board.
func (a *AI) CannonTarget(view BoardView) (Move, bool) {
	if m, err := a.CalculateMove(view); err == nil && m.Layer == mb.LayerSea {
		return Move{Layer: mb.LayerSea, Index: mb.ClampSquareAnchor(m.Index)}, true
	}

	layer, cells := mb.LayerSea, a.availableCells(view, mb.LayerSea)
	if len(cells) == 0 {
		for _, l := range mb.Layers {
			if open := a.availableCells(view, l); len(open) > len(cells) {
				layer, cells = l, open
			}
		}
	}
	if len(cells) == 0 {
		return Move{}, false
	}
	return Move{Layer: layer, Index: mb.ClampSquareAnchor(cells[a.rng.Intn(len(cells))])}, true
}
