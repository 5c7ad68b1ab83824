package session

import (
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/targeting"
)

type EventKind uint8

const (
	EventPlacement EventKind = iota
	EventCombatStarted
	EventAttack
	EventTurn
	EventAIMove
	EventPowerupAwarded
	EventPowerupUsed
	EventInputMode
	EventMasked
	EventTimer
	EventForfeit
	EventDesync
	EventGameOver
)

var eventNames = [...]string{
	"placement", "combat_started", "attack", "turn", "ai_move", "powerup_awarded",
	"powerup_used", "input_mode", "masked", "timer", "forfeit", "desync", "game_over",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is what the controller tells presentation about. Only the
// fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Side      mb.SideID
	Placement *mb.PlacementResult
	Attack    *mb.AttackResult
	Move      *targeting.Move
	Powerup   mb.Powerup
	Input     InputMode
	Masks     []campaign.MaskedCell
	Remaining int
	GameOver  *mb.GameOver
	Mission   *campaign.Result
	Err       error
}

// Listener receives events while the controller holds its lock, so it
// must not call back into the controller.
type Listener interface {
	OnEvent(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

type nopListener struct{}

func (nopListener) OnEvent(Event) {}
