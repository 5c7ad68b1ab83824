package session

import (
	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

// runAITurn plays the computer's whole turn. It keeps attacking while it
// hits and gives the turn up after maxAIAttacks volleys.
func (c *Controller) runAITurn() {
	if c.phase != PhaseCombat || !c.aiSide(c.current) {
		return
	}
	c.turnInProgress = true
	defer func() { c.turnInProgress = false }()

	for range c.maxAIAttacks {
		results, err := c.aiVolley()
		if err != nil {
			c.logger.Warn("computer forfeits its turn", zap.String("game", c.game.Id()), zap.Error(err))
			c.emit(Event{Kind: EventForfeit, Side: mb.SideOpponent, Err: err})
			c.endTurn(mb.SideOpponent)
			return
		}
		// The black box does not use up the attack.
		if results == nil {
			continue
		}
		if !c.settle(mb.SideOpponent, results) {
			return
		}
	}

	c.logger.Warn("computer reached the attack limit", zap.Int("limit", c.maxAIAttacks))
	c.emit(Event{Kind: EventForfeit, Side: mb.SideOpponent})
	c.endTurn(mb.SideOpponent)
}

func (c *Controller) aiVolley() ([]mb.AttackResult, error) {
	view := c.game.View(mb.SidePlayer)
	if c.aiPowerup {
		c.aiPowerup = false
		return c.aiUsePowerup(view)
	}

	move, err := c.ai.CalculateMove(view)
	if err != nil {
		return nil, err
	}
	c.emit(Event{Kind: EventAIMove, Side: mb.SideOpponent, Move: &move})

	res, err := c.resolve(mb.SideOpponent, move.Layer, move.Index)
	if err != nil {
		return nil, err
	}
	return []mb.AttackResult{res}, nil
}

func (c *Controller) aiUsePowerup(view mb.TargetView) ([]mb.AttackResult, error) {
	p := c.ai.ChoosePowerup(view)
	c.logger.Info("computer used powerup", zap.String("game", c.game.Id()), zap.Stringer("powerup", p))
	c.emit(Event{Kind: EventPowerupUsed, Side: mb.SideOpponent, Powerup: p})

	var targets []mb.Target
	switch p {
	case mb.PowerupBlackBox:
		empty := c.game.Side(mb.SideOpponent).Grids[mb.LayerSky].EmptyCells()
		if len(empty) == 0 {
			return c.aiVolley()
		}
		res := c.game.AddExtraUnit(mb.SideOpponent, empty[c.rng.Intn(len(empty))])
		c.emit(Event{Kind: EventPlacement, Side: mb.SideOpponent, Placement: &res})
		return nil, nil

	case mb.PowerupKryptonLaser:
		index, ok := c.ai.LaserTarget(view)
		if !ok {
			return nil, cerr.ErrNoLegalAIMove
		}
		targets = view.LaserTargets(index)

	case mb.PowerupCannonBall:
		move, ok := c.ai.CannonTarget(view)
		if !ok {
			return nil, cerr.ErrNoLegalAIMove
		}
		targets = view.CannonTargets(move.Layer, move.Index)
	}

	if len(targets) == 0 {
		return c.aiVolley()
	}
	return c.resolveAll(mb.SideOpponent, targets)
}
