package session

import (
	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

// PlaceShip places the next ship of the setup side's fleet. A rejected
// placement is not an error; its status says why.
func (c *Controller) PlaceShip(anchor int, orientation mb.Orientation) (mb.PlacementResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canPlace(); err != nil {
		return mb.PlacementResult{}, err
	}
	res := c.game.PlaceNextShip(c.setupSide, anchor, orientation)
	c.emit(Event{Kind: EventPlacement, Side: c.setupSide, Placement: &res})
	if res.Ok() {
		c.afterPlacement()
	}
	return res, nil
}

// AutoPlace places the rest of the setup side's fleet at random.
func (c *Controller) AutoPlace() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canPlace(); err != nil {
		return err
	}
	for _, res := range c.game.PlaceFleetRandomly(c.setupSide, c.rng) {
		c.emit(Event{Kind: EventPlacement, Side: c.setupSide, Placement: &res})
	}
	c.afterPlacement()
	return nil
}

// UndoPlacement takes back the setup side's last ship.
func (c *Controller) UndoPlacement() (mb.PlacementMove, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.canPlace(); err != nil {
		return mb.PlacementMove{}, err
	}
	last, ok := c.game.LastMove()
	if !ok || last.Kind != mb.MovePlacement || last.Placement.Side != c.setupSide {
		return mb.PlacementMove{}, cerr.ErrUndoUnavailable
	}
	undone, _ := c.game.UndoLastPlacement()
	return undone, nil
}

func (c *Controller) canPlace() error {
	if c.phase != PhaseSetup {
		return cerr.WrongPhase(c.phase.String())
	}
	if c.mode == ModeOnline && c.localReady {
		return cerr.WrongPhase("waiting for opponent fleet")
	}
	return nil
}

func (c *Controller) afterPlacement() {
	if !c.game.Side(c.setupSide).PlacementComplete() {
		return
	}

	switch c.mode {
	case ModeHotseat:
		if c.setupSide == mb.SidePlayer {
			c.setupSide = mb.SideOpponent
			c.emit(Event{Kind: EventTurn, Side: c.setupSide})
			return
		}
		c.startCombat()
	case ModeOnline:
		c.localReady = true
		c.send(PeerMessage{Type: MsgShipsReady, Ships: c.game.Side(mb.SidePlayer).Layouts()})
		if c.remoteReady {
			c.startCombat()
		}
	default:
		c.startCombat()
	}
}

func (c *Controller) startCombat() {
	c.game.PlaceTreasure(mb.SidePlayer, c.rng)
	if c.mode == ModeHotseat {
		c.game.PlaceTreasure(mb.SideOpponent, c.rng)
	}

	c.phase = PhaseCombat
	c.current = mb.SidePlayer
	if c.mode == ModeOnline && !c.host {
		c.current = mb.SideOpponent
	}
	if c.engine != nil {
		if err := c.engine.Begin(); err != nil {
			c.logger.Error("failed to begin mission", zap.Int("mission", c.mission.ID), zap.Error(err))
		}
	}

	c.logger.Info("combat started",
		zap.String("game", c.game.Id()),
		zap.Stringer("mode", c.mode),
		zap.Stringer("first", c.current),
	)
	c.emit(Event{Kind: EventCombatStarted, Side: c.current})
	c.beginTurn()
}
