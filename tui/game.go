package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/db/archive"
	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/session"
)

// controllerOptions wires a new controller to this program. Each game
// gets its own seq so late events of an abandoned game are ignored.
func (m *Model) controllerOptions(extra ...session.Option) []session.Option {
	m.seq++
	seq, events := m.seq, m.events
	listener := session.ListenerFunc(func(e session.Event) {
		select {
		case events <- eventMsg{seq: seq, event: e}:
		default:
		}
	})

	opts := []session.Option{
		session.WithCatalogue(m.catalogue),
		session.WithLogger(m.logger),
	}
	opts = append(opts, m.sessionOpts...)
	opts = append(opts, extra...)
	return append(opts, session.WithListener(listener))
}

func (m *Model) startGame(extra ...session.Option) string {
	ctrl, err := session.New(m.controllerOptions(extra...)...)
	if err != nil {
		return err.Error()
	}
	m.enterGame(ctrl)
	return ""
}

func (m *Model) resume() string {
	blob, err := m.store.LoadSnapshot(m.ctx, autosaveID)
	if err != nil {
		return err.Error()
	}
	ctrl, err := session.RestoreController(blob, m.controllerOptions()...)
	if err != nil {
		return "saved game unreadable: " + err.Error()
	}
	m.enterGame(ctrl)
	m.addLog("game resumed")
	return ""
}

func (m *Model) enterGame(ctrl *session.Controller) {
	m.ctrl = ctrl
	m.screen = screenGame
	m.finished = false
	m.log = nil
	m.orientation = mb.Horizontal
	m.cursor = cursor{layer: mb.LayerSpace}
	m.snapCursorToShip()
}

func (m *Model) leaveGame() {
	m.seq++
	m.ctrl = nil
	m.screen = screenMenu
	m.menu = m.buildMenu()
}

// snapCursorToShip moves the cursor to the layer of the next ship to
// place.
func (m *Model) snapCursorToShip() {
	if m.ctrl.Phase() != session.PhaseSetup {
		return
	}
	if next, ok := m.ctrl.NextShip(); ok {
		if spec, ok := mb.SpecOf(next); ok {
			m.cursor.layer = spec.Layer
		}
	}
}

func (m *Model) updateGame(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "esc":
		if m.link != nil {
			return m.quit()
		}
		m.leaveGame()
		return nil
	case "up", "k":
		m.cursor.row = max(m.cursor.row-1, 0)
	case "down", "j":
		m.cursor.row = min(m.cursor.row+1, mb.BoardSize-1)
	case "left", "h":
		m.cursor.col = max(m.cursor.col-1, 0)
	case "right", "l":
		m.cursor.col = min(m.cursor.col+1, mb.BoardSize-1)
	case "tab":
		m.cursor.layer = mb.Layers[(int(m.cursor.layer)+1)%mb.LayerCount]
	case "shift+tab":
		m.cursor.layer = mb.Layers[(int(m.cursor.layer)+mb.LayerCount-1)%mb.LayerCount]
	case "s":
		m.status = m.save()
	default:
		switch m.ctrl.Phase() {
		case session.PhaseSetup:
			m.status = m.setupKey(key)
		case session.PhaseCombat:
			m.status = m.combatKey(key)
		case session.PhaseGameOver:
			if key == "enter" && m.link == nil {
				m.leaveGame()
			}
		}
	}
	return nil
}

func (m *Model) setupKey(key string) string {
	switch key {
	case "r":
		m.orientation = m.orientation.Toggle()
	case "a":
		if err := m.ctrl.AutoPlace(); err != nil {
			return err.Error()
		}
	case "u":
		undone, err := m.ctrl.UndoPlacement()
		if err != nil {
			return err.Error()
		}
		m.addLog(fmt.Sprintf("took back %s", undone.Ship))
	case "enter", " ":
		res, err := m.ctrl.PlaceShip(m.cursor.index(), m.orientation)
		if err != nil {
			return err.Error()
		}
		if !res.Ok() {
			return fmt.Sprintf("%s cannot go there: %s", res.Ship, res.Status)
		}
	default:
		return m.status
	}
	m.snapCursorToShip()
	return ""
}

var powerupKeys = map[string]mb.Powerup{
	"1": mb.PowerupBlackBox,
	"2": mb.PowerupKryptonLaser,
	"3": mb.PowerupCannonBall,
}

func (m *Model) combatKey(key string) string {
	if p, ok := powerupKeys[key]; ok {
		if err := m.ctrl.ChoosePowerup(p); err != nil {
			return err.Error()
		}
		return ""
	}
	if key != "enter" && key != " " {
		return m.status
	}

	err := m.ctrl.Select(m.cursor.layer, m.cursor.index())
	switch {
	case err == nil:
		return ""
	case errors.Is(err, cerr.ErrNotYourTurn), errors.Is(err, cerr.ErrTurnInProgress):
		return "wait for your turn"
	case errors.Is(err, cerr.ErrInvalidAttackTarget):
		return "that cell is already resolved"
	default:
		return err.Error()
	}
}

func (m *Model) save() string {
	blob, err := m.ctrl.Snapshot()
	if err != nil {
		return "cannot save now: " + err.Error()
	}
	if err := m.store.SaveSnapshot(m.ctx, autosaveID, blob); err != nil {
		return "save failed: " + err.Error()
	}
	return "game saved"
}

func (m *Model) onEvent(e session.Event) tea.Cmd {
	switch e.Kind {
	case session.EventAttack:
		a := e.Attack
		line := fmt.Sprintf("%s fires at %s %s: %s", e.Side, a.Layer, cellName(a.Index), a.Outcome)
		if len(a.SunkPositions) > 0 {
			line += fmt.Sprintf(" (%s sunk)", a.Ship)
		}
		m.addLog(line)
	case session.EventPowerupAwarded:
		if e.Side == mb.SidePlayer || m.ctrl.Mode() == session.ModeHotseat {
			m.addLog("treasure found: press 1 black box, 2 krypton laser, 3 cannon ball")
		} else {
			m.addLog("the enemy found a treasure")
		}
	case session.EventPowerupUsed:
		m.addLog(fmt.Sprintf("%s uses %s", e.Side, e.Powerup))
	case session.EventMasked:
		m.addLog(fmt.Sprintf("%d cells slip into the fog", len(e.Masks)))
	case session.EventForfeit:
		m.addLog(fmt.Sprintf("%s forfeits the turn", e.Side))
	case session.EventDesync:
		m.addLog("opponent reported a different result")
		m.logger.Warn("desync", zap.Error(e.Err))
	case session.EventGameOver:
		return m.gameOver(e)
	}
	return nil
}

func (m *Model) gameOver(e session.Event) tea.Cmd {
	if m.finished {
		return nil
	}
	m.finished = true

	winner := mb.SidePlayer
	if e.GameOver != nil {
		winner = e.GameOver.Winner
	}
	m.addLog(fmt.Sprintf("game over, %s wins", winner))

	if m.ctrl.Mode() != session.ModeOnline {
		if err := m.store.DeleteSnapshot(m.ctx, autosaveID); err != nil && !errors.Is(err, cerr.ErrSnapshotNotFound) {
			m.logger.Warn("failed to drop autosave", zap.Error(err))
		}
	}
	if e.Mission != nil {
		m.status = m.recordMission(*e.Mission)
	}

	if m.archive == nil {
		return nil
	}
	g := archive.Game{ID: m.ctrl.GameId(), History: m.ctrl.History(), Winner: winner}
	if mission, ok := m.ctrl.Mission(); ok {
		g.Mission = mission.ID
	}
	w := m.archive
	return func() tea.Msg {
		path, err := w.WriteGame(g)
		return archivedMsg{path: path, err: err}
	}
}

func (m *Model) recordMission(res campaign.Result) string {
	progress, err := m.store.LoadProgress(m.ctx, m.player)
	if err != nil {
		return "progress unavailable: " + err.Error()
	}
	before := progress.HighestUnlocked
	stars, err := m.catalogue.Record(progress, res.MissionID, res.Won, res.Accuracy)
	if err != nil {
		return err.Error()
	}
	if err := m.store.SaveProgress(m.ctx, m.player, progress); err != nil {
		return "progress not saved: " + err.Error()
	}

	if !res.Won {
		return fmt.Sprintf("mission failed (accuracy %.0f%%)", res.Accuracy)
	}
	status := fmt.Sprintf("mission complete: %d star(s), accuracy %.0f%%", stars, res.Accuracy)
	if progress.HighestUnlocked > before {
		status += fmt.Sprintf(", mission %d unlocked", progress.HighestUnlocked)
	}
	return status
}

func cellName(index int) string {
	row, col := mb.RowCol(index)
	return fmt.Sprintf("%c%d", 'A'+rune(row), col+1)
}

// fleetLine lists ships with their damage, sunk ones struck out.
func fleetLine(fleet []session.ShipStatus) string {
	parts := make([]string, 0, len(fleet))
	for _, sh := range fleet {
		if sh.Sunk {
			parts = append(parts, fmt.Sprintf("-%s-", sh.Type))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", sh.Type, sh.Size-sh.Hits, sh.Size))
	}
	return strings.Join(parts, "  ")
}
