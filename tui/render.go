package tui

import (
	"fmt"
	"strings"

	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/session"
)

var glyphs = map[session.Visible]string{
	session.VisibleUnknown:  "~",
	session.VisibleEmpty:    ".",
	session.VisibleShip:     "#",
	session.VisibleHit:      "X",
	session.VisibleMiss:     "o",
	session.VisibleTreasure: "$",
	session.VisibleMine:     "*",
	session.VisibleFog:      "?",
	session.VisibleDecay:    "%",
}

// sides returns the board being shot at and the board being defended
// from the point of view of whoever is at the keyboard.
func (m *Model) sides() (target, own mb.SideID) {
	own = mb.SidePlayer
	if m.ctrl.Mode() == session.ModeHotseat {
		own = m.ctrl.Current()
		if m.ctrl.Phase() == session.PhaseSetup {
			own = m.ctrl.SetupSide()
		}
	}
	return own.Other(), own
}

// renderBoard draws the four layers side by side. The cursor is drawn
// when withCursor is set.
func (m *Model) renderBoard(owner mb.SideID, withCursor bool) string {
	var b strings.Builder
	for _, layer := range mb.Layers {
		fmt.Fprintf(&b, "%-15s", strings.ToUpper(layer.String()))
	}
	b.WriteString("\n")

	for row := range mb.BoardSize {
		for _, layer := range mb.Layers {
			fmt.Fprintf(&b, "%c ", 'A'+rune(row))
			for col := range mb.BoardSize {
				glyph := glyphs[m.ctrl.Visible(owner, layer, mb.Index(row, col))]
				if withCursor && layer == m.cursor.layer && row == m.cursor.row && col == m.cursor.col {
					fmt.Fprintf(&b, "[%s]", glyph)
				} else {
					fmt.Fprintf(&b, " %s ", glyph)
				}
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewGame() string {
	target, own := m.sides()
	phase := m.ctrl.Phase()

	var b strings.Builder
	title := "WARZONES " + m.ctrl.Mode().String()
	if mission, ok := m.ctrl.Mission(); ok {
		title = fmt.Sprintf("MISSION %d: %s", mission.ID, mission.Name)
	}
	b.WriteString(title + "\n\n")

	b.WriteString("ENEMY\n")
	b.WriteString(m.renderBoard(target, phase == session.PhaseCombat))
	b.WriteString(fleetLine(m.ctrl.Fleet(target)) + "\n\n")

	b.WriteString("YOUR FLEET\n")
	b.WriteString(m.renderBoard(own, phase == session.PhaseSetup))
	b.WriteString(fleetLine(m.ctrl.Fleet(own)) + "\n\n")

	b.WriteString(m.statusLine(own) + "\n")
	for _, line := range m.log {
		b.WriteString("  " + line + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + m.help(phase) + "\n")
	return b.String()
}

func (m *Model) statusLine(own mb.SideID) string {
	switch m.ctrl.Phase() {
	case session.PhaseSetup:
		next, ok := m.ctrl.NextShip()
		if !ok {
			return "waiting for the opponent fleet"
		}
		return fmt.Sprintf("%s places %s (%s)", own, next, m.orientation)

	case session.PhaseCombat:
		turn := "your turn"
		if m.ctrl.Current() != own || m.ctrl.TurnInProgress() {
			turn = "opponent's turn"
		}
		if m.ctrl.Mode() == session.ModeHotseat {
			turn = m.ctrl.Current().String() + " to fire"
		}
		shots := m.ctrl.Shots(own)
		line := fmt.Sprintf("%s  mode: %s  shots: %d  accuracy: %.0f%%", turn, m.ctrl.InputMode(), shots.Total, shots.Accuracy())
		if remaining, ok := m.ctrl.TimerRemaining(); ok {
			line += fmt.Sprintf("  timer: %ds", remaining)
		}
		return line

	default:
		winner, _ := m.ctrl.Winner()
		return fmt.Sprintf("game over, %s wins", winner)
	}
}

func (m *Model) help(phase session.Phase) string {
	switch phase {
	case session.PhaseSetup:
		return "arrows: move  enter: place  r: rotate  a: auto place  u: undo  esc: menu"
	case session.PhaseCombat:
		if m.ctrl.InputMode() == session.InputChoosingPowerup {
			return "1: black box  2: krypton laser  3: cannon ball"
		}
		return "arrows: move  tab: layer  enter: fire  s: save  esc: menu"
	default:
		return "enter: back to menu"
	}
}
