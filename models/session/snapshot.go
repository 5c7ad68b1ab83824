package session

import (
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/targeting"
)

const snapshotVersion = 1

type snapshot struct {
	Version     int                   `json:"version"`
	Mode        Mode                  `json:"mode"`
	Phase       Phase                 `json:"phase"`
	SetupSide   mb.SideID             `json:"setup_side"`
	Current     mb.SideID             `json:"current"`
	Input       InputMode             `json:"input"`
	PowerupSide mb.SideID             `json:"powerup_side"`
	AIPowerup   bool                  `json:"ai_powerup"`
	Winner      mb.SideID             `json:"winner"`
	Game        mb.Snapshot           `json:"game"`
	MissionID   int                   `json:"mission_id,omitempty"`
	Engine      *campaign.EngineState `json:"engine,omitempty"`
	Result      *campaign.Result      `json:"result,omitempty"`
}

// Snapshot serializes a local game so it can be resumed later. Online
// games and turns still being resolved cannot be saved.
func (c *Controller) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeOnline {
		return nil, cerr.WrongPhase("online games cannot be saved")
	}
	if c.turnInProgress {
		return nil, cerr.ErrTurnInProgress
	}

	s := snapshot{
		Version:     snapshotVersion,
		Mode:        c.mode,
		Phase:       c.phase,
		SetupSide:   c.setupSide,
		Current:     c.current,
		Input:       c.input.mode(),
		PowerupSide: c.powerupSide,
		AIPowerup:   c.aiPowerup,
		Winner:      c.winner,
		Game:        c.game.Snapshot(),
		Result:      c.result,
	}
	if c.mission != nil {
		s.MissionID = c.mission.ID
		state := c.engine.Export()
		s.Engine = &state
	}
	return json.Marshal(s)
}

// RestoreController resumes a game saved by Snapshot. The computer's
// knowledge is rebuilt from the move log; its personality is rolled
// again.
func RestoreController(blob []byte, opts ...Option) (*Controller, error) {
	var s snapshot
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, cerr.ErrCorruptSnapshot(err.Error())
	}
	if s.Version != snapshotVersion {
		return nil, cerr.ErrCorruptSnapshot("unsupported version")
	}
	if s.Mode == ModeOnline {
		return nil, cerr.ErrCorruptSnapshot("online game")
	}
	game, err := mb.RestoreGame(s.Game)
	if err != nil {
		return nil, err
	}

	c, err := New(append(slices.Clone(opts), WithMode(s.Mode))...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelAll()
	c.game = game
	c.engine = nil
	c.mission = nil
	if s.MissionID != 0 {
		m, err := c.catalogue.Mission(s.MissionID)
		if err != nil {
			return nil, err
		}
		if s.Engine == nil {
			return nil, cerr.ErrCorruptSnapshot("mission without engine state")
		}
		c.mission = &m
		c.engine = campaign.RestoreEngine(m, *s.Engine)
	}

	c.phase = s.Phase
	c.setupSide = s.SetupSide
	c.current = s.Current
	c.input = inputStateFor(s.Input)
	c.powerupSide = s.PowerupSide
	c.aiPowerup = s.AIPowerup
	c.winner = s.Winner
	c.result = s.Result
	c.replayAI()

	c.logger.Info("game restored", zap.String("game", c.game.Id()), zap.Stringer("phase", c.phase))
	if c.phase == PhaseCombat {
		c.beginTurn()
	}
	return c, nil
}

// replayAI feeds the computer every shot it already fired.
func (c *Controller) replayAI() {
	c.ai.Reset()
	if c.mission != nil {
		c.ai.Override(c.mission.AI)
	}
	if c.mode != ModeSolo {
		return
	}

	target := c.game.Side(mb.SidePlayer)
	hits := make(map[mb.ShipType]int)
	for _, m := range c.game.History() {
		if m.Kind != mb.MoveAttack || m.Attack.Attacker != mb.SideOpponent {
			continue
		}

		a := m.Attack
		switch a.Outcome {
		case mb.OutcomeHit:
			hits[a.Ship]++
			var report targeting.HitReport
			if sh, ok := target.Ship(a.Ship); ok && hits[a.Ship] == len(sh.Positions) {
				report.Sunk = slices.Clone(sh.Positions)
			}
			c.ai.RecordHit(a.Layer, a.Index, report)
		case mb.OutcomeTreasure:
			c.ai.RecordHit(a.Layer, a.Index, targeting.HitReport{Treasure: true})
		default:
			c.ai.RecordMiss(a.Layer, a.Index)
		}
	}
}
