package session

import (
	"slices"
	"time"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/targeting"
)

// Select is the single entry point for a cell chosen during combat. What
// it does depends on the input mode: attack, laser, cannon or placing
// the extra unit.
func (c *Controller) Select(layer mb.Layer, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseCombat {
		return cerr.WrongPhase(c.phase.String())
	}
	if c.turnInProgress {
		return cerr.ErrTurnInProgress
	}
	if !c.humanSide(c.current) {
		return cerr.ErrNotYourTurn
	}
	return c.input.handleInput(c, layer, index)
}

// ChoosePowerup spends the treasure the side to move just found.
func (c *Controller) ChoosePowerup(p mb.Powerup) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseCombat {
		return cerr.WrongPhase(c.phase.String())
	}
	if c.input.mode() != InputChoosingPowerup {
		return cerr.WrongInputMode(c.input.mode().String())
	}

	var next inputState
	switch p {
	case mb.PowerupBlackBox:
		if len(c.game.Side(c.current).Grids[mb.LayerSky].EmptyCells()) == 0 {
			return cerr.PowerupUnavailable(p.String(), "no empty sky cell")
		}
		next = placingExtraUnit{}
	case mb.PowerupKryptonLaser:
		next = laserTargeting{}
	case mb.PowerupCannonBall:
		next = cannonTargeting{}
	default:
		return cerr.ErrInvalidPowerup(p.String())
	}

	c.logger.Info("powerup chosen", zap.Stringer("side", c.current), zap.Stringer("powerup", p))
	c.emit(Event{Kind: EventPowerupUsed, Side: c.current, Powerup: p})
	// The black box is announced once its cell is known.
	if c.mode == ModeOnline && p != mb.PowerupBlackBox {
		c.send(PeerMessage{Type: MsgPowerupUsed, Powerup: &p})
	}
	c.setInput(next)
	return nil
}

// fire resolves a volley of one or more cells for a person at this
// controller. Online shots are sent to the peer instead.
func (c *Controller) fire(attacker mb.SideID, targets []mb.Target) error {
	if len(targets) == 0 {
		return cerr.ErrInvalidAttackTarget
	}
	// Masked cells cannot be picked; powerup volleys skip them.
	if c.engine != nil && attacker == mb.SidePlayer {
		first := targets[0]
		targets = slices.DeleteFunc(slices.Clone(targets), func(t mb.Target) bool {
			_, masked := c.engine.Masked(t.Layer, t.Index)
			return masked
		})
		if len(targets) == 0 {
			return cerr.InvalidAttackTarget(first.Layer.String(), first.Index)
		}
	}

	view := c.game.View(attacker.Other())
	for _, t := range targets {
		if !view.Available(t.Layer, t.Index) {
			return cerr.InvalidAttackTarget(t.Layer.String(), t.Index)
		}
	}

	if c.mode == ModeOnline {
		c.sendVolley(targets)
		return nil
	}

	results, err := c.resolveAll(attacker, targets)
	if err != nil {
		return err
	}
	c.settle(attacker, results)
	return nil
}

func (c *Controller) resolveAll(attacker mb.SideID, targets []mb.Target) ([]mb.AttackResult, error) {
	results := make([]mb.AttackResult, 0, len(targets))
	for _, t := range targets {
		res, err := c.resolve(attacker, t.Layer, t.Index)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if res.GameOver.IsOver {
			break
		}
	}
	return results, nil
}

// resolve runs one shot through the mission modifiers and the resolver.
func (c *Controller) resolve(attacker mb.SideID, layer mb.Layer, index int) (mb.AttackResult, error) {
	if c.engine != nil && attacker == mb.SidePlayer {
		if res, blocked := c.engine.BeforeAttack(c.game, layer, index); blocked {
			c.logAttack(res)
			c.emit(Event{Kind: EventAttack, Side: attacker, Attack: &res})
			return res, nil
		}
	}

	res, err := c.game.ProcessAttack(attacker, layer, index)
	if err != nil {
		return mb.AttackResult{}, err
	}
	if c.engine != nil {
		c.engine.AfterAttack(res)
	}
	if c.aiSide(attacker) {
		c.recordForAI(res)
	}

	c.logAttack(res)
	c.emit(Event{Kind: EventAttack, Side: attacker, Attack: &res})
	return res, nil
}

func (c *Controller) recordForAI(res mb.AttackResult) {
	switch res.Outcome {
	case mb.OutcomeHit:
		c.ai.RecordHit(res.Layer, res.Index, targeting.HitReport{Sunk: res.SunkPositions})
	case mb.OutcomeTreasure:
		c.ai.RecordHit(res.Layer, res.Index, targeting.HitReport{Treasure: true})
	default:
		c.ai.RecordMiss(res.Layer, res.Index)
	}
}

func (c *Controller) logAttack(res mb.AttackResult) {
	c.logger.Info("attack resolved",
		zap.String("game", c.game.Id()),
		zap.Stringer("attacker", res.Attacker),
		zap.Stringer("layer", res.Layer),
		zap.Int("index", res.Index),
		zap.Stringer("outcome", res.Outcome),
	)
}

// settle applies the turn rule to a finished volley and reports whether
// the attacker keeps the turn. Any hit continues, treasure also awards a
// powerup, everything else passes the turn. A shield block inside a
// volley does not cancel the hits beside it.
func (c *Controller) settle(attacker mb.SideID, results []mb.AttackResult) bool {
	for _, res := range results {
		if res.GameOver.IsOver {
			c.finish(res.GameOver.Winner)
			return false
		}
	}

	if slices.ContainsFunc(results, func(r mb.AttackResult) bool { return r.Outcome == mb.OutcomeTreasure }) {
		c.awardPowerup(attacker)
		return true
	}
	if slices.ContainsFunc(results, mb.AttackResult.Continues) {
		c.continueTurn(attacker)
		return true
	}

	c.endTurn(attacker)
	return false
}

func (c *Controller) awardPowerup(side mb.SideID) {
	c.emit(Event{Kind: EventPowerupAwarded, Side: side})
	switch {
	case c.aiSide(side):
		c.aiPowerup = true
	case c.humanSide(side):
		c.setInput(choosingPowerup{})
	}
	c.continueTurn(side)
}

func (c *Controller) continueTurn(side mb.SideID) {
	c.emit(Event{Kind: EventTurn, Side: side})
	if side == mb.SidePlayer {
		c.startTimer()
	}
}

func (c *Controller) endTurn(side mb.SideID) {
	c.stopTimer()
	if side == mb.SidePlayer && c.engine != nil {
		if masks := c.engine.EndPlayerTurn(); len(masks) > 0 {
			c.emit(Event{Kind: EventMasked, Side: mb.SideOpponent, Masks: masks})
		}
	}

	c.setInput(normalAttack{})
	c.current = side.Other()
	c.beginTurn()
}

func (c *Controller) beginTurn() {
	c.emit(Event{Kind: EventTurn, Side: c.current})
	switch {
	case c.aiSide(c.current):
		c.schedule(c.thinkTime, c.runAITurn)
	case c.current == mb.SidePlayer:
		c.startTimer()
	}
}

func (c *Controller) startTimer() {
	if c.engine == nil || !c.engine.HasTimer() {
		return
	}
	c.engine.StartTimer()
	c.cancel(c.tickAction)
	c.tickAction = c.schedule(time.Second, c.tick)

	remaining, _ := c.engine.TimerRemaining()
	c.emit(Event{Kind: EventTimer, Side: mb.SidePlayer, Remaining: remaining})
}

func (c *Controller) stopTimer() {
	if c.engine != nil {
		c.engine.StopTimer()
	}
	if c.tickAction >= 0 {
		c.cancel(c.tickAction)
		c.tickAction = -1
	}
}

func (c *Controller) tick() {
	c.tickAction = -1
	if c.phase != PhaseCombat || c.current != mb.SidePlayer || c.engine == nil {
		return
	}

	if !c.engine.Tick() {
		if remaining, running := c.engine.TimerRemaining(); running {
			c.emit(Event{Kind: EventTimer, Side: mb.SidePlayer, Remaining: remaining})
			c.tickAction = c.schedule(time.Second, c.tick)
		}
		return
	}
	if c.turnInProgress {
		return
	}

	c.logger.Info("turn timer expired", zap.String("game", c.game.Id()))
	c.emit(Event{Kind: EventTimer, Side: mb.SidePlayer, Remaining: 0})
	c.emit(Event{Kind: EventForfeit, Side: mb.SidePlayer})
	c.endTurn(mb.SidePlayer)
}

func (c *Controller) finish(winner mb.SideID) {
	c.stopTimer()
	c.cancelAll()
	c.phase = PhaseGameOver
	c.winner = winner
	c.setInput(normalAttack{})

	e := Event{Kind: EventGameOver, Side: winner, GameOver: &mb.GameOver{IsOver: true, Winner: winner}}
	if c.engine != nil {
		r := c.engine.Resolve(winner == mb.SidePlayer, c.game.Side(mb.SidePlayer).Shots.Accuracy())
		c.result = &r
		e.Mission = &r
	}

	c.logger.Info("game over",
		zap.String("game", c.game.Id()),
		zap.Stringer("winner", winner),
		zap.Float64("accuracy", c.game.Side(mb.SidePlayer).Shots.Accuracy()),
	)
	c.emit(e)
}
