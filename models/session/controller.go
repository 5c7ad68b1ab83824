package session

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	"github.com/saeidalz13/warzones/models/targeting"
)

type Mode uint8

const (
	ModeSolo Mode = iota
	ModeHotseat
	ModeOnline
)

var modeNames = [...]string{"solo", "hotseat", "online"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for i, name := range modeNames {
		if name == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return cerr.InvalidMode("unknown mode " + string(b))
}

type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseCombat
	PhaseGameOver
)

var phaseNames = [...]string{"setup", "combat", "game_over"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

const (
	DefaultThinkTime    = 600 * time.Millisecond
	DefaultMaxAIAttacks = mb.CellCount*mb.LayerCount + 8
)

// Controller drives one game: setup, turn order, powerups, the computer
// opponent and mission modifiers. Exported methods are safe for
// concurrent use; scheduled actions run under the same lock.
type Controller struct {
	mu sync.Mutex

	mode         Mode
	mission      *campaign.Mission
	catalogue    *campaign.Catalogue
	rng          *rand.Rand
	scheduler    Scheduler
	thinkTime    time.Duration
	listener     Listener
	logger       *zap.Logger
	maxAIAttacks int
	personality  *targeting.Personality

	game           *mb.Game
	ai             *targeting.AI
	engine         *campaign.Engine
	phase          Phase
	setupSide      mb.SideID
	current        mb.SideID
	input          inputState
	powerupSide    mb.SideID
	aiPowerup      bool
	turnInProgress bool
	winner         mb.SideID
	result         *campaign.Result

	peer        Peer
	host        bool
	localReady  bool
	remoteReady bool
	outgoing    volley
	incoming    volley

	generation int
	nextAction int
	pending    map[int]func()
	tickAction int
}

type Option func(*Controller)

func WithMode(mode Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithMission runs a solo game under the mission's modifiers.
func WithMission(m campaign.Mission) Option {
	return func(c *Controller) {
		c.mission = &m
	}
}

func WithCatalogue(catalogue *campaign.Catalogue) Option {
	return func(c *Controller) {
		c.catalogue = catalogue
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

func WithThinkTime(d time.Duration) Option {
	return func(c *Controller) {
		c.thinkTime = d
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		c.rng = rng
	}
}

func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.listener = l
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMaxAIAttacks(n int) Option {
	return func(c *Controller) {
		c.maxAIAttacks = n
	}
}

func WithAIPersonality(p targeting.Personality) Option {
	return func(c *Controller) {
		c.personality = &p
	}
}

// WithPeer connects an online game. The host moves first.
func WithPeer(p Peer, host bool) Option {
	return func(c *Controller) {
		c.peer = p
		c.host = host
	}
}

func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		scheduler:    TimerScheduler{},
		thinkTime:    DefaultThinkTime,
		listener:     nopListener{},
		logger:       zap.NewNop(),
		maxAIAttacks: DefaultMaxAIAttacks,
		pending:      make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.catalogue == nil {
		c.catalogue = campaign.MustLoadCatalogue()
	}
	if c.mission != nil && c.mode != ModeSolo {
		return nil, cerr.InvalidMode("missions are solo only, got " + c.mode.String())
	}
	if c.mode == ModeOnline && c.peer == nil {
		return nil, cerr.ErrMissingPeer
	}

	var aiOpts []targeting.Option
	if c.personality != nil {
		aiOpts = append(aiOpts, targeting.WithPersonality(*c.personality))
	}
	c.ai = targeting.New(c.rng, aiOpts...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return c, nil
}

// Reset cancels every scheduled action and starts a fresh game in setup.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.cancelAll()

	playerFleet := mb.StandardFleet
	if c.mission != nil {
		playerFleet = c.mission.PlayerFleet()
	}
	c.game = mb.NewGame(playerFleet, nil)

	c.phase = PhaseSetup
	c.setupSide = mb.SidePlayer
	c.current = mb.SidePlayer
	c.input = normalAttack{}
	c.aiPowerup = false
	c.turnInProgress = false
	c.result = nil
	c.localReady, c.remoteReady = false, false
	c.outgoing, c.incoming = volley{}, volley{}
	c.engine = nil

	c.ai.Reset()
	if c.mode != ModeSolo {
		return
	}

	c.game.PlaceFleetRandomly(mb.SideOpponent, c.rng)
	if c.mission != nil {
		c.ai.Override(c.mission.AI)
		c.engine = campaign.NewEngine(*c.mission)
		if _, err := c.engine.Arm(c.game, c.rng); err != nil {
			c.logger.Error("failed to arm mission", zap.Int("mission", c.mission.ID), zap.Error(err))
		}
	}
	c.game.PlaceTreasure(mb.SideOpponent, c.rng)
	c.logger.Info("new game", zap.String("game", c.game.Id()), zap.String("mode", c.mode.String()))
}

func (c *Controller) cancelAll() {
	for id, cancel := range c.pending {
		cancel()
		delete(c.pending, id)
	}
	c.tickAction = -1
	c.generation++
}

// schedule runs fn under the controller lock after d. Actions scheduled
// before a reset never run.
func (c *Controller) schedule(d time.Duration, fn func()) int {
	id, generation := c.nextAction, c.generation
	c.nextAction++

	c.pending[id] = c.scheduler.Schedule(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if generation != c.generation {
			return
		}
		if _, ok := c.pending[id]; !ok {
			return
		}
		delete(c.pending, id)
		fn()
	})
	return id
}

func (c *Controller) cancel(id int) {
	if cancel, ok := c.pending[id]; ok {
		cancel()
		delete(c.pending, id)
	}
}

func (c *Controller) emit(e Event) {
	c.listener.OnEvent(e)
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Current is the side whose turn it is.
func (c *Controller) Current() mb.SideID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetupSide is the side placing ships during setup.
func (c *Controller) SetupSide() mb.SideID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setupSide
}

func (c *Controller) InputMode() InputMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.mode()
}

func (c *Controller) TurnInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnInProgress
}

func (c *Controller) Mission() (campaign.Mission, bool) {
	if c.mission == nil {
		return campaign.Mission{}, false
	}
	return *c.mission, true
}

// MissionResult is set once a mission game is over.
func (c *Controller) MissionResult() (campaign.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return campaign.Result{}, false
	}
	return *c.result, true
}

func (c *Controller) Winner() (mb.SideID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner, c.phase == PhaseGameOver
}

func (c *Controller) Shots(side mb.SideID) mb.Shots {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Side(side).Shots
}

func (c *Controller) GameId() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Id()
}

// History returns the move log of the current game.
func (c *Controller) History() []mb.Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.History()
}

// NextShip is the ship the setup side places next.
func (c *Controller) NextShip() (mb.ShipType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Side(c.setupSide).NextShip()
}

func (c *Controller) TimerRemaining() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine == nil {
		return 0, false
	}
	return c.engine.TimerRemaining()
}

// humanSide reports whether a person at this controller plays side.
func (c *Controller) humanSide(side mb.SideID) bool {
	switch c.mode {
	case ModeHotseat:
		return true
	default:
		return side == mb.SidePlayer
	}
}

func (c *Controller) aiSide(side mb.SideID) bool {
	return c.mode == ModeSolo && side == mb.SideOpponent
}
