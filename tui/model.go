// Package tui is the terminal front end: a bubbletea program around one
// session.Controller at a time.
package tui

import (
	"context"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/db/archive"
	"github.com/saeidalz13/warzones/db/store"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/session"
)

const (
	autosaveID  = "autosave"
	logLines    = 8
	eventBuffer = 128
)

type screen uint8

const (
	screenMenu screen = iota
	screenGame
)

// OnlineLink is the relay connection of an online game.
type OnlineLink interface {
	session.Peer
	Listen(ctx context.Context, handle func(session.PeerMessage)) error
}

// eventMsg carries a controller event into the update loop. Events of a
// game the player already left are dropped by seq.
type eventMsg struct {
	seq   int
	event session.Event
}

type archivedMsg struct {
	path string
	err  error
}

type linkClosedMsg struct {
	err error
}

type cursor struct {
	layer    mb.Layer
	row, col int
}

func (c cursor) index() int {
	return mb.Index(c.row, c.col)
}

type Model struct {
	catalogue   *campaign.Catalogue
	store       store.Store
	archive     *archive.Writer
	logger      *zap.Logger
	player      string
	sessionOpts []session.Option
	startID     int
	link        OnlineLink
	host        bool

	ctx    context.Context
	cancel context.CancelFunc

	screen      screen
	menu        menu
	ctrl        *session.Controller
	seq         int
	events      chan eventMsg
	cursor      cursor
	orientation mb.Orientation
	log         []string
	status      string
	finished    bool
}

type Option func(*Model)

func WithStore(st store.Store) Option {
	return func(m *Model) {
		m.store = st
	}
}

// WithArchive writes every finished game to parquet.
func WithArchive(w *archive.Writer) Option {
	return func(m *Model) {
		m.archive = w
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

func WithCatalogue(c *campaign.Catalogue) Option {
	return func(m *Model) {
		m.catalogue = c
	}
}

// WithPlayer names the campaign save.
func WithPlayer(name string) Option {
	return func(m *Model) {
		m.player = name
	}
}

// WithSessionOptions are passed to every controller the program creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(m *Model) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithSeed makes computer games reproducible.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.sessionOpts = append(m.sessionOpts, session.WithRand(rand.New(rand.NewSource(seed))))
	}
}

// WithMission skips the menu and launches a campaign mission.
func WithMission(id int) Option {
	return func(m *Model) {
		m.startID = id
	}
}

// WithOnline plays a single online game over link.
func WithOnline(link OnlineLink, host bool) Option {
	return func(m *Model) {
		m.link = link
		m.host = host
	}
}

func New(opts ...Option) *Model {
	m := &Model{
		catalogue: campaign.MustLoadCatalogue(),
		logger:    zap.NewNop(),
		player:    "local",
		events:    make(chan eventMsg, eventBuffer),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = store.NewMemory()
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.menu = m.buildMenu()

	switch {
	case m.link != nil:
		m.status = m.startGame(session.WithMode(session.ModeOnline), session.WithPeer(m.link, m.host))
	case m.startID != 0:
		m.status = m.launchMission(m.startID)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent()}
	if m.link != nil {
		cmds = append(cmds, m.listen())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) listen() tea.Cmd {
	link, ctx := m.link, m.ctx
	return func() tea.Msg {
		err := link.Listen(ctx, func(msg session.PeerMessage) {
			if ctrl := m.controller(); ctrl != nil {
				if err := ctrl.HandlePeerMessage(msg); err != nil {
					m.logger.Warn("peer message rejected", zap.String("type", string(msg.Type)), zap.Error(err))
				}
			}
		})
		return linkClosedMsg{err: err}
	}
}

// controller is read from the listen goroutine; the online controller
// is created once in New and never replaced.
func (m *Model) controller() *session.Controller {
	return m.ctrl
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.screen == screenMenu {
			return m, m.updateMenu(msg)
		}
		return m, m.updateGame(msg)

	case eventMsg:
		var cmd tea.Cmd
		if msg.seq == m.seq {
			cmd = m.onEvent(msg.event)
		}
		return m, tea.Batch(cmd, m.waitForEvent())

	case archivedMsg:
		if msg.err != nil {
			m.logger.Warn("archive failed", zap.Error(msg.err))
			m.addLog("archive failed: " + msg.err.Error())
		} else {
			m.addLog("archived to " + msg.path)
		}

	case linkClosedMsg:
		if m.ctx.Err() == nil {
			m.status = "connection closed"
			if msg.err != nil {
				m.status += ": " + msg.err.Error()
			}
		}
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

func (m *Model) addLog(line string) {
	m.log = append(m.log, time.Now().Format("15:04:05")+" "+line)
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

func (m *Model) View() string {
	if m.screen == screenMenu {
		return m.viewMenu()
	}
	return m.viewGame()
}
