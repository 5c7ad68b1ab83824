package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	"github.com/saeidalz13/warzones/models/session"
)

type entryKind uint8

const (
	entrySolo entryKind = iota
	entryHotseat
	entryResume
	entryMission
	entryQuit
)

type menuEntry struct {
	kind    entryKind
	mission int
	label   string
}

type menu struct {
	entries []menuEntry
	cursor  int
}

func (m *Model) buildMenu() menu {
	entries := []menuEntry{
		{kind: entrySolo, label: "Free play vs computer"},
		{kind: entryHotseat, label: "Hotseat (two players)"},
	}
	if _, err := m.store.LoadSnapshot(m.ctx, autosaveID); err == nil {
		entries = append(entries, menuEntry{kind: entryResume, label: "Resume saved game"})
	}

	progress, err := m.store.LoadProgress(m.ctx, m.player)
	if err != nil {
		m.logger.Warn("progress unavailable", zap.Error(err))
	}
	act := 0
	for _, mission := range m.catalogue.Missions {
		label := fmt.Sprintf("  %2d. %s", mission.ID, mission.Name)
		if mission.Act != act {
			act = mission.Act
			label = fmt.Sprintf("%s\n%s", strings.ToUpper(m.catalogue.ActName(act)), label)
		}
		if progress != nil {
			if rec, ok := progress.Record(mission.ID); ok && rec.Completed {
				label += " " + strings.Repeat("*", rec.Stars)
			} else if mission.ID > progress.HighestUnlocked {
				label += " [locked]"
			}
		}
		entries = append(entries, menuEntry{kind: entryMission, mission: mission.ID, label: label})
	}
	entries = append(entries, menuEntry{kind: entryQuit, label: "Quit"})
	return menu{entries: entries}
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(m.menu.entries)-1 {
			m.menu.cursor++
		}
	case "enter", " ":
		return m.choose(m.menu.entries[m.menu.cursor])
	}
	return nil
}

func (m *Model) choose(e menuEntry) tea.Cmd {
	switch e.kind {
	case entrySolo:
		m.status = m.startGame()
	case entryHotseat:
		m.status = m.startGame(session.WithMode(session.ModeHotseat))
	case entryResume:
		m.status = m.resume()
	case entryMission:
		m.status = m.launchMission(e.mission)
	case entryQuit:
		return m.quit()
	}
	return nil
}

func (m *Model) launchMission(id int) string {
	progress, err := m.store.LoadProgress(m.ctx, m.player)
	if err != nil {
		return "progress unavailable: " + err.Error()
	}
	mission, err := m.catalogue.Launch(progress, id)
	if err != nil {
		if errors.Is(err, cerr.ErrMissionLocked) {
			return fmt.Sprintf("mission %d is locked, win mission %d first", id, progress.HighestUnlocked)
		}
		return err.Error()
	}
	status := m.startGame(session.WithMission(mission))
	if status == "" {
		m.addLog(mission.Name + ": " + mission.Briefing)
	}
	return status
}

func (m *Model) viewMenu() string {
	var b strings.Builder
	b.WriteString("W A R Z O N E S\n\n")
	for i, e := range m.menu.entries {
		prefix := "  "
		if i == m.menu.cursor {
			prefix = "> "
		}
		lines := strings.Split(e.label, "\n")
		for j, line := range lines {
			if j == len(lines)-1 {
				b.WriteString(prefix + line + "\n")
			} else {
				b.WriteString("\n" + line + "\n")
			}
		}
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\nenter: select  up/down: move  q: quit\n")
	return b.String()
}
