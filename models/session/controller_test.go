package session

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
)

type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(kind EventKind, side mb.SideID) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind && e.Side == side {
			n++
		}
	}
	return n
}

type harness struct {
	c     *Controller
	sched *ManualScheduler
	rec   *recorder
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{sched: NewManualScheduler(), rec: &recorder{}}
	base := []Option{
		WithRand(rand.New(rand.NewSource(7))),
		WithScheduler(h.sched),
		WithListener(h.rec),
		WithLogger(zaptest.NewLogger(t)),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	h.c = c
	return h
}

func (h *harness) startCombat(t *testing.T) {
	t.Helper()
	if err := h.c.AutoPlace(); err != nil {
		t.Fatal(err)
	}
	if h.c.Phase() != PhaseCombat {
		t.Fatalf("expected phase: %s\t got: %s", PhaseCombat, h.c.Phase())
	}
}

// cellWith finds the first cell of the owner's board in the given state.
func (h *harness) cellWith(t *testing.T, owner mb.SideID, state mb.CellState) mb.Target {
	t.Helper()
	side := h.c.game.Side(owner)
	for _, layer := range mb.Layers {
		for i := 0; i < mb.CellCount; i++ {
			if side.Cell(layer, i).State == state {
				return mb.Target{Layer: layer, Index: i}
			}
		}
	}
	t.Fatalf("no %s cell on %s board", state, owner)
	return mb.Target{}
}

func (h *harness) miss(t *testing.T) mb.Target {
	t.Helper()
	target := h.cellWith(t, mb.SideOpponent, mb.CellEmpty)
	if err := h.c.Select(target.Layer, target.Index); err != nil {
		t.Fatal(err)
	}
	return target
}

// untilPlayer lets the computer play until the turn comes back.
func (h *harness) untilPlayer(t *testing.T) {
	t.Helper()
	for range 10 {
		if h.c.Current() == mb.SidePlayer || h.c.Phase() != PhaseCombat {
			return
		}
		h.sched.Advance(DefaultThinkTime)
	}
	t.Fatal("computer never gave the turn back")
}

func TestSoloMissPassesTurnToComputer(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)

	if h.c.Current() != mb.SidePlayer {
		t.Fatalf("expected first turn: %s\t got: %s", mb.SidePlayer, h.c.Current())
	}

	h.miss(t)
	if h.c.Current() != mb.SideOpponent {
		t.Fatalf("expected turn: %s\t got: %s", mb.SideOpponent, h.c.Current())
	}
	if h.sched.Pending() != 1 {
		t.Fatalf("expected one scheduled computer turn\t got: %d", h.sched.Pending())
	}

	h.untilPlayer(t)
	if shots := h.c.Shots(mb.SideOpponent); shots.Total == 0 {
		t.Fatal("expected the computer to fire")
	}
	if h.rec.count(EventAIMove, mb.SideOpponent) == 0 {
		t.Fatal("expected ai_move events")
	}
}

func TestSelectRejections(t *testing.T) {
	h := newHarness(t)

	t.Run("before combat", func(t *testing.T) {
		if err := h.c.Select(mb.LayerSea, 0); !errors.Is(err, cerr.ErrWrongPhase) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrWrongPhase, err)
		}
	})

	h.startCombat(t)
	target := h.miss(t)

	t.Run("computer turn", func(t *testing.T) {
		if err := h.c.Select(mb.LayerSea, 0); !errors.Is(err, cerr.ErrNotYourTurn) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrNotYourTurn, err)
		}
	})

	h.untilPlayer(t)

	t.Run("resolved cell", func(t *testing.T) {
		if err := h.c.Select(target.Layer, target.Index); !errors.Is(err, cerr.ErrInvalidAttackTarget) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrInvalidAttackTarget, err)
		}
	})
}

func TestHitKeepsTurn(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)

	target := h.cellWith(t, mb.SideOpponent, mb.CellOccupied)
	if err := h.c.Select(target.Layer, target.Index); err != nil {
		t.Fatal(err)
	}
	if h.c.Current() != mb.SidePlayer {
		t.Fatalf("expected turn: %s\t got: %s", mb.SidePlayer, h.c.Current())
	}
	if h.sched.Pending() != 0 {
		t.Fatalf("expected nothing scheduled\t got: %d", h.sched.Pending())
	}
}

func TestPlayerWinsBySinkingEverything(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)

	for {
		if _, over := h.c.Winner(); over {
			break
		}
		target := h.cellWith(t, mb.SideOpponent, mb.CellOccupied)
		if err := h.c.Select(target.Layer, target.Index); err != nil {
			t.Fatal(err)
		}
	}

	winner, _ := h.c.Winner()
	if winner != mb.SidePlayer {
		t.Fatalf("expected winner: %s\t got: %s", mb.SidePlayer, winner)
	}
	if h.rec.count(EventGameOver, mb.SidePlayer) != 1 {
		t.Fatal("expected one game_over event")
	}
	if err := h.c.Select(mb.LayerSea, 0); !errors.Is(err, cerr.ErrWrongPhase) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrWrongPhase, err)
	}
}

func TestPowerups(t *testing.T) {
	t.Run("choosing blocks attacks", func(t *testing.T) {
		h := newHarness(t)
		h.startCombat(t)
		h.findTreasure(t)

		if h.c.InputMode() != InputChoosingPowerup {
			t.Fatalf("expected input: %s\t got: %s", InputChoosingPowerup, h.c.InputMode())
		}
		if err := h.c.Select(mb.LayerSea, 0); !errors.Is(err, cerr.ErrWrongInputMode) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrWrongInputMode, err)
		}
		if h.c.Current() != mb.SidePlayer {
			t.Fatalf("expected turn: %s\t got: %s", mb.SidePlayer, h.c.Current())
		}
	})

	t.Run("laser hits every layer", func(t *testing.T) {
		h := newHarness(t)
		h.startCombat(t)
		h.findTreasure(t)
		if err := h.c.ChoosePowerup(mb.PowerupKryptonLaser); err != nil {
			t.Fatal(err)
		}

		index := 5
		expected := len(h.c.game.View(mb.SideOpponent).LaserTargets(index))
		before := h.c.Shots(mb.SidePlayer).Total
		if err := h.c.Select(mb.LayerSpace, index); err != nil {
			t.Fatal(err)
		}
		if fired := h.c.Shots(mb.SidePlayer).Total - before; fired != expected {
			t.Fatalf("expected shots: %d\t got: %d", expected, fired)
		}
		if h.c.InputMode() != InputNormalAttack {
			t.Fatalf("expected input: %s\t got: %s", InputNormalAttack, h.c.InputMode())
		}
	})

	t.Run("cannon clips at the edge", func(t *testing.T) {
		h := newHarness(t)
		h.startCombat(t)
		h.findTreasure(t)
		if err := h.c.ChoosePowerup(mb.PowerupCannonBall); err != nil {
			t.Fatal(err)
		}

		before := h.c.Shots(mb.SidePlayer).Total
		if err := h.c.Select(mb.LayerSea, mb.CellCount-1); err != nil {
			t.Fatal(err)
		}
		if fired := h.c.Shots(mb.SidePlayer).Total - before; fired != 1 {
			t.Fatalf("expected shots: 1\t got: %d", fired)
		}
	})

	t.Run("black box keeps the attack", func(t *testing.T) {
		h := newHarness(t)
		h.startCombat(t)
		h.findTreasure(t)
		if err := h.c.ChoosePowerup(mb.PowerupBlackBox); err != nil {
			t.Fatal(err)
		}

		sky := h.c.game.Side(mb.SidePlayer).Grids[mb.LayerSky].EmptyCells()
		if err := h.c.Select(mb.LayerSky, sky[0]); err != nil {
			t.Fatal(err)
		}
		if jet, _ := h.c.game.Side(mb.SidePlayer).Ship(mb.ExtraJet); !jet.IsPlaced() {
			t.Fatal("expected the extra jet to be placed")
		}
		if h.c.Current() != mb.SidePlayer || h.c.InputMode() != InputNormalAttack {
			t.Fatalf("expected %s in %s\t got: %s in %s", mb.SidePlayer, InputNormalAttack, h.c.Current(), h.c.InputMode())
		}
	})

	t.Run("outside choosing mode", func(t *testing.T) {
		h := newHarness(t)
		h.startCombat(t)
		if err := h.c.ChoosePowerup(mb.PowerupKryptonLaser); !errors.Is(err, cerr.ErrWrongInputMode) {
			t.Fatalf("expected error: %v\t got: %v", cerr.ErrWrongInputMode, err)
		}
	})
}

func (h *harness) findTreasure(t *testing.T) {
	t.Helper()
	index := h.c.game.Side(mb.SideOpponent).Treasure[0]
	if err := h.c.Select(mb.LayerSub, index); err != nil {
		t.Fatal(err)
	}
	if h.rec.count(EventPowerupAwarded, mb.SidePlayer) != 1 {
		t.Fatal("expected a powerup award")
	}
}

func TestComputerSpendsPowerup(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)

	h.c.mu.Lock()
	h.c.current = mb.SideOpponent
	h.c.aiPowerup = true
	h.c.runAITurn()
	h.c.mu.Unlock()

	if h.rec.count(EventPowerupUsed, mb.SideOpponent) != 1 {
		t.Fatal("expected the computer to use its powerup")
	}
	if h.c.aiPowerup {
		t.Fatal("expected the powerup to be spent")
	}
	if h.c.TurnInProgress() {
		t.Fatal("expected the turn to be settled")
	}
}

func TestResetCancelsScheduledTurn(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)
	h.miss(t)

	h.c.Reset()
	if h.sched.Pending() != 0 {
		t.Fatalf("expected nothing scheduled\t got: %d", h.sched.Pending())
	}
	h.sched.Advance(time.Minute)

	if h.c.Phase() != PhaseSetup {
		t.Fatalf("expected phase: %s\t got: %s", PhaseSetup, h.c.Phase())
	}
	if shots := h.c.Shots(mb.SideOpponent); shots.Total != 0 {
		t.Fatalf("expected no computer shots\t got: %d", shots.Total)
	}
}

func TestUndoPlacement(t *testing.T) {
	h := newHarness(t)

	res, err := h.c.PlaceShip(0, mb.Horizontal)
	if err != nil || !res.Ok() {
		t.Fatalf("expected placement\t got: %s, %v", res.Status, err)
	}

	undone, err := h.c.UndoPlacement()
	if err != nil {
		t.Fatal(err)
	}
	if undone.Ship != res.Ship {
		t.Fatalf("expected undone: %s\t got: %s", res.Ship, undone.Ship)
	}
	if next, _ := h.c.NextShip(); next != res.Ship {
		t.Fatalf("expected next ship: %s\t got: %s", res.Ship, next)
	}

	if _, err := h.c.UndoPlacement(); !errors.Is(err, cerr.ErrUndoUnavailable) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrUndoUnavailable, err)
	}
}

func TestHotseat(t *testing.T) {
	h := newHarness(t, WithMode(ModeHotseat))

	if err := h.c.AutoPlace(); err != nil {
		t.Fatal(err)
	}
	if h.c.Phase() != PhaseSetup || h.c.SetupSide() != mb.SideOpponent {
		t.Fatalf("expected second setup\t got: %s by %s", h.c.Phase(), h.c.SetupSide())
	}
	own := h.cellWith(t, mb.SidePlayer, mb.CellOccupied)
	if v := h.c.Visible(mb.SidePlayer, own.Layer, own.Index); v != VisibleUnknown {
		t.Fatalf("expected the first fleet hidden during second setup\t got: %s", v)
	}

	h.startCombat(t)
	if len(h.c.game.Side(mb.SidePlayer).Treasure) != 1 || len(h.c.game.Side(mb.SideOpponent).Treasure) != 1 {
		t.Fatal("expected a treasure on both sides")
	}

	h.miss(t)
	if h.c.Current() != mb.SideOpponent {
		t.Fatalf("expected turn: %s\t got: %s", mb.SideOpponent, h.c.Current())
	}
	if h.sched.Pending() != 0 {
		t.Fatal("expected no computer in hotseat")
	}

	target := h.cellWith(t, mb.SidePlayer, mb.CellEmpty)
	if err := h.c.Select(target.Layer, target.Index); err != nil {
		t.Fatal(err)
	}
	if h.c.Current() != mb.SidePlayer {
		t.Fatalf("expected turn: %s\t got: %s", mb.SidePlayer, h.c.Current())
	}
}

func mustMission(t *testing.T, id int) campaign.Mission {
	t.Helper()
	m, err := campaign.MustLoadCatalogue().Mission(id)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMissionsAreSoloOnly(t *testing.T) {
	_, err := New(WithMode(ModeHotseat), WithMission(mustMission(t, 1)))
	if !errors.Is(err, cerr.ErrInvalidMode) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrInvalidMode, err)
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("hotseat")); err != nil || m != ModeHotseat {
		t.Fatalf("expected mode: %s\t got: %s, %v", ModeHotseat, m, err)
	}
	if err := m.UnmarshalText([]byte("arcade")); !errors.Is(err, cerr.ErrInvalidMode) {
		t.Fatalf("expected error: %v\t got: %v", cerr.ErrInvalidMode, err)
	}
}

func TestTurnTimerForfeits(t *testing.T) {
	h := newHarness(t, WithMission(mustMission(t, 4)))
	h.startCombat(t)

	if remaining, running := h.c.TimerRemaining(); !running || remaining != 10 {
		t.Fatalf("expected running timer at 10\t got: %d, %t", remaining, running)
	}

	h.sched.Advance(9 * time.Second)
	if h.c.Current() != mb.SidePlayer {
		t.Fatal("expected the player to still have the turn")
	}

	h.sched.Advance(time.Second)
	if h.c.Current() != mb.SideOpponent {
		t.Fatalf("expected turn: %s\t got: %s", mb.SideOpponent, h.c.Current())
	}
	if h.rec.count(EventForfeit, mb.SidePlayer) != 1 {
		t.Fatal("expected a forfeit event")
	}
}

func TestFogMasksOldMisses(t *testing.T) {
	h := newHarness(t, WithMission(mustMission(t, 2)))
	h.startCombat(t)

	first := h.miss(t)
	if v := h.c.Visible(mb.SideOpponent, first.Layer, first.Index); v != VisibleMiss {
		t.Fatalf("expected: %s\t got: %s", VisibleMiss, v)
	}
	h.untilPlayer(t)
	h.miss(t)

	if v := h.c.Visible(mb.SideOpponent, first.Layer, first.Index); v != VisibleFog {
		t.Fatalf("expected: %s\t got: %s", VisibleFog, v)
	}
	if h.rec.count(EventMasked, mb.SideOpponent) != 1 {
		t.Fatal("expected one masked event")
	}
}

func TestMissionWinRecordsResult(t *testing.T) {
	h := newHarness(t, WithMission(mustMission(t, 1)))
	h.startCombat(t)

	for {
		if _, over := h.c.Winner(); over {
			break
		}
		target := h.cellWith(t, mb.SideOpponent, mb.CellOccupied)
		if err := h.c.Select(target.Layer, target.Index); err != nil {
			t.Fatal(err)
		}
	}

	res, ok := h.c.MissionResult()
	if !ok || !res.Won || res.MissionID != 1 {
		t.Fatalf("expected a won result for mission 1\t got: %+v", res)
	}
	if res.Stars != 3 {
		t.Fatalf("expected stars: 3\t got: %d", res.Stars)
	}
}

func TestVisibleHidesOpponentShips(t *testing.T) {
	h := newHarness(t)
	h.startCombat(t)

	ship := h.cellWith(t, mb.SideOpponent, mb.CellOccupied)
	if v := h.c.Visible(mb.SideOpponent, ship.Layer, ship.Index); v != VisibleUnknown {
		t.Fatalf("expected: %s\t got: %s", VisibleUnknown, v)
	}
	own := h.cellWith(t, mb.SidePlayer, mb.CellOccupied)
	if v := h.c.Visible(mb.SidePlayer, own.Layer, own.Index); v != VisibleShip {
		t.Fatalf("expected: %s\t got: %s", VisibleShip, v)
	}
}
