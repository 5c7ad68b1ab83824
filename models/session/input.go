package session

import (
	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

type InputMode uint8

const (
	InputNormalAttack InputMode = iota
	InputChoosingPowerup
	InputLaserTargeting
	InputCannonTargeting
	InputPlacingExtraUnit
)

var inputModeNames = [...]string{
	"normal_attack", "choosing_powerup", "laser_targeting", "cannon_targeting", "placing_extra_unit",
}

func (m InputMode) String() string {
	if int(m) < len(inputModeNames) {
		return inputModeNames[m]
	}
	return "unknown"
}

func (m InputMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *InputMode) UnmarshalText(b []byte) error {
	for i, name := range inputModeNames {
		if name == string(b) {
			*m = InputMode(i)
			return nil
		}
	}
	return cerr.WrongInputMode(string(b))
}

// inputState decides what a cell selection means during combat.
type inputState interface {
	mode() InputMode
	enter(c *Controller)
	exit(c *Controller)
	handleInput(c *Controller, layer mb.Layer, index int) error
}

func inputStateFor(mode InputMode) inputState {
	switch mode {
	case InputChoosingPowerup:
		return choosingPowerup{}
	case InputLaserTargeting:
		return laserTargeting{}
	case InputCannonTargeting:
		return cannonTargeting{}
	case InputPlacingExtraUnit:
		return placingExtraUnit{}
	default:
		return normalAttack{}
	}
}

func (c *Controller) setInput(next inputState) {
	if c.input.mode() == next.mode() {
		return
	}
	c.input.exit(c)
	c.input = next
	next.enter(c)
	c.emit(Event{Kind: EventInputMode, Side: c.current, Input: next.mode()})
}

type normalAttack struct{}

func (normalAttack) mode() InputMode     { return InputNormalAttack }
func (normalAttack) enter(c *Controller) {}
func (normalAttack) exit(c *Controller)  {}

func (normalAttack) handleInput(c *Controller, layer mb.Layer, index int) error {
	return c.fire(c.current, []mb.Target{{Layer: layer, Index: index}})
}

type choosingPowerup struct{}

func (choosingPowerup) mode() InputMode     { return InputChoosingPowerup }
func (choosingPowerup) enter(c *Controller) { c.powerupSide = c.current }
func (choosingPowerup) exit(c *Controller)  {}

func (choosingPowerup) handleInput(c *Controller, layer mb.Layer, index int) error {
	return cerr.WrongInputMode(InputChoosingPowerup.String())
}

// laserTargeting fires at one index on every layer; the layer of the
// selection is ignored.
type laserTargeting struct{}

func (laserTargeting) mode() InputMode     { return InputLaserTargeting }
func (laserTargeting) enter(c *Controller) {}
func (laserTargeting) exit(c *Controller)  {}

func (laserTargeting) handleInput(c *Controller, layer mb.Layer, index int) error {
	targets := c.game.View(c.current.Other()).LaserTargets(index)
	if len(targets) == 0 {
		return cerr.InvalidAttackTarget("all", index)
	}
	c.setInput(normalAttack{})
	return c.fire(c.current, targets)
}

type cannonTargeting struct{}

func (cannonTargeting) mode() InputMode     { return InputCannonTargeting }
func (cannonTargeting) enter(c *Controller) {}
func (cannonTargeting) exit(c *Controller)  {}

// Human cannon shots are clipped at the board edge.
func (cannonTargeting) handleInput(c *Controller, layer mb.Layer, index int) error {
	targets := c.game.View(c.current.Other()).CannonTargets(layer, index)
	if len(targets) == 0 {
		return cerr.InvalidAttackTarget(layer.String(), index)
	}
	c.setInput(normalAttack{})
	return c.fire(c.current, targets)
}

// placingExtraUnit drops an ExtraJet on the attacker's own sky. It does
// not consume the attack.
type placingExtraUnit struct{}

func (placingExtraUnit) mode() InputMode     { return InputPlacingExtraUnit }
func (placingExtraUnit) enter(c *Controller) {}
func (placingExtraUnit) exit(c *Controller)  {}

func (placingExtraUnit) handleInput(c *Controller, layer mb.Layer, index int) error {
	res := c.game.AddExtraUnit(c.current, index)
	c.emit(Event{Kind: EventPlacement, Side: c.current, Placement: &res})
	if !res.Ok() {
		return cerr.InvalidPlacement(string(mb.ExtraJet), res.Status.String())
	}

	if c.mode == ModeOnline {
		p := mb.PowerupBlackBox
		c.send(PeerMessage{Type: MsgPowerupUsed, Powerup: &p, Index: index})
	}
	c.setInput(normalAttack{})
	c.continueTurn(c.current)
	return nil
}
