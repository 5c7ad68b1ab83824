package session

import (
	"fmt"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

type PeerMessageType string

const (
	MsgAttack       PeerMessageType = "ATTACK"
	MsgAttackResult PeerMessageType = "ATTACK_RESULT"
	MsgShipsReady   PeerMessageType = "SHIPS_READY"
	MsgPowerupUsed  PeerMessageType = "POWERUP_USED"
)

// PeerMessage is the game traffic between two online controllers. Each
// side owns its board: the defender resolves an ATTACK and answers with
// ATTACK_RESULT.
type PeerMessage struct {
	Type       PeerMessageType  `json:"type"`
	Layer      mb.Layer         `json:"layer"`
	Index      int              `json:"index"`
	Volley     int              `json:"volley,omitempty"`
	Seq        int              `json:"seq,omitempty"`
	Result     *mb.AttackResult `json:"result,omitempty"`
	TurnChange bool             `json:"turn_change,omitempty"`
	Ships      []mb.ShipLayout  `json:"ships,omitempty"`
	Powerup    *mb.Powerup      `json:"powerup,omitempty"`
}

// Peer delivers messages to the other controller. Send is called with
// the controller lock held.
type Peer interface {
	Send(msg PeerMessage) error
}

// volley collects the results of a multi cell shot until all of them are
// known.
type volley struct {
	size    int
	results []mb.AttackResult
}

func (v *volley) add(res mb.AttackResult) bool {
	v.results = append(v.results, res)
	return len(v.results) >= v.size || res.GameOver.IsOver
}

func (c *Controller) send(msg PeerMessage) {
	if c.peer == nil {
		return
	}
	if err := c.peer.Send(msg); err != nil {
		c.logger.Error("failed to send peer message", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

func (c *Controller) sendVolley(targets []mb.Target) {
	c.turnInProgress = true
	c.outgoing = volley{size: len(targets)}
	for i, t := range targets {
		c.send(PeerMessage{Type: MsgAttack, Layer: t.Layer, Index: t.Index, Volley: len(targets), Seq: i + 1})
	}
}

// HandlePeerMessage applies a message from the other controller.
func (c *Controller) HandlePeerMessage(msg PeerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeOnline {
		return cerr.WrongPhase("not an online game")
	}

	switch msg.Type {
	case MsgShipsReady:
		return c.onShipsReady(msg)
	case MsgAttack:
		return c.onAttack(msg)
	case MsgAttackResult:
		return c.onAttackResult(msg)
	case MsgPowerupUsed:
		return c.onPowerupUsed(msg)
	default:
		return fmt.Errorf("unknown peer message type %q", msg.Type)
	}
}

func (c *Controller) onShipsReady(msg PeerMessage) error {
	if c.phase != PhaseSetup {
		return cerr.WrongPhase(c.phase.String())
	}
	for _, res := range c.game.LoadFleet(mb.SideOpponent, msg.Ships) {
		if !res.Ok() {
			c.logger.Warn("peer ship rejected", zap.String("ship", string(res.Ship)), zap.Stringer("status", res.Status))
		}
	}
	c.remoteReady = true
	if c.localReady {
		c.startCombat()
	}
	return nil
}

func (c *Controller) onAttack(msg PeerMessage) error {
	if c.phase != PhaseCombat {
		return cerr.WrongPhase(c.phase.String())
	}
	if c.current != mb.SideOpponent {
		return cerr.ErrNotYourTurn
	}

	res, err := c.game.ProcessAttack(mb.SideOpponent, msg.Layer, msg.Index)
	if err != nil {
		return err
	}
	c.logAttack(res)
	c.emit(Event{Kind: EventAttack, Side: mb.SideOpponent, Attack: &res})

	reply := PeerMessage{Type: MsgAttackResult, Layer: res.Layer, Index: res.Index, Volley: msg.Volley, Seq: msg.Seq, Result: &res}
	if c.incoming.size == 0 {
		c.incoming = volley{size: max(1, msg.Volley)}
	}
	if !c.incoming.add(res) {
		c.send(reply)
		return nil
	}

	results := c.incoming.results
	c.incoming = volley{}
	reply.TurnChange = !c.settle(mb.SideOpponent, results)
	c.send(reply)
	return nil
}

// onAttackResult records the peer's verdict on our shot. The local copy
// decides game over; a disagreeing peer is reported as a desync.
func (c *Controller) onAttackResult(msg PeerMessage) error {
	if c.phase != PhaseCombat || !c.turnInProgress || c.outgoing.size == 0 {
		return cerr.WrongPhase("no attack awaiting a result")
	}
	if msg.Result == nil {
		return cerr.ErrNilPayload
	}

	remote := *msg.Result
	remote.Attacker = mb.SidePlayer
	res, err := c.game.ApplyRemoteResult(remote)
	if err != nil {
		return err
	}
	if res.GameOver.IsOver != msg.Result.GameOver.IsOver {
		err := cerr.DesyncOnRemote(res.GameOver.IsOver, msg.Result.GameOver.IsOver)
		c.logger.Warn("peer disagrees on game over", zap.String("game", c.game.Id()), zap.Error(err))
		c.emit(Event{Kind: EventDesync, Side: mb.SidePlayer, Err: err})
	}
	c.logAttack(res)
	c.emit(Event{Kind: EventAttack, Side: mb.SidePlayer, Attack: &res})

	if !c.outgoing.add(res) {
		return nil
	}
	results := c.outgoing.results
	c.outgoing = volley{}
	c.turnInProgress = false
	c.settle(mb.SidePlayer, results)
	return nil
}

func (c *Controller) onPowerupUsed(msg PeerMessage) error {
	if msg.Powerup == nil {
		return cerr.ErrNilPayload
	}
	p := *msg.Powerup
	c.emit(Event{Kind: EventPowerupUsed, Side: mb.SideOpponent, Powerup: p})
	if p != mb.PowerupBlackBox {
		return nil
	}

	res := c.game.AddExtraUnit(mb.SideOpponent, msg.Index)
	c.emit(Event{Kind: EventPlacement, Side: mb.SideOpponent, Placement: &res})
	if !res.Ok() {
		return cerr.InvalidPlacement(string(mb.ExtraJet), res.Status.String())
	}
	return nil
}
