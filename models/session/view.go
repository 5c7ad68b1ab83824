package session

import (
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
)

// Visible is what a person at this controller may see of a cell.
type Visible uint8

const (
	VisibleUnknown Visible = iota
	VisibleEmpty
	VisibleShip
	VisibleHit
	VisibleMiss
	VisibleTreasure
	VisibleMine
	VisibleFog
	VisibleDecay
)

var visibleNames = [...]string{"unknown", "empty", "ship", "hit", "miss", "treasure", "mine", "fog", "decay"}

func (v Visible) String() string {
	if int(v) < len(visibleNames) {
		return visibleNames[v]
	}
	return "unknown"
}

// Visible hides the contents of boards the viewer does not own and
// applies mission masks to the opponent board.
func (c *Controller) Visible(owner mb.SideID, layer mb.Layer, index int) Visible {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !owner.Valid() || !layer.Valid() || !mb.ValidIndex(index) {
		return VisibleUnknown
	}

	revealed := c.reveals(owner)
	if !revealed && owner == mb.SideOpponent && c.engine != nil {
		if mask, ok := c.engine.Masked(layer, index); ok {
			if mask == campaign.MaskDecay {
				return VisibleDecay
			}
			return VisibleFog
		}
	}

	cell := c.game.Side(owner).Cell(layer, index)
	switch cell.State {
	case mb.CellHit:
		return VisibleHit
	case mb.CellMiss:
		return VisibleMiss
	}
	if !revealed {
		return VisibleUnknown
	}
	switch cell.State {
	case mb.CellOccupied:
		return VisibleShip
	case mb.CellTreasure:
		return VisibleTreasure
	case mb.CellMine:
		return VisibleMine
	default:
		return VisibleEmpty
	}
}

func (c *Controller) reveals(owner mb.SideID) bool {
	if c.phase == PhaseGameOver {
		return true
	}
	if c.mode != ModeHotseat {
		return owner == mb.SidePlayer
	}
	if c.phase == PhaseSetup {
		return owner == c.setupSide
	}
	return owner == c.current
}

// ShipStatus is a ship as the fleet panel shows it.
type ShipStatus struct {
	Type mb.ShipType
	Size int
	Hits int
	Sunk bool
}

// Fleet lists the placed ships of a side in layer order.
func (c *Controller) Fleet(owner mb.SideID) []ShipStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	side := c.game.Side(owner)
	fleet := make([]ShipStatus, 0, len(side.Ships))
	for _, layer := range mb.Layers {
		for _, sh := range side.ShipsOn(layer) {
			fleet = append(fleet, ShipStatus{Type: sh.Type, Size: len(sh.Positions), Hits: len(sh.Hits), Sunk: sh.IsSunk()})
		}
	}
	return fleet
}
