package campaign

import (
	"math/rand"
	"slices"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

type State uint8

const (
	StateIdle State = iota
	StateArmed
	StateActive
	StateResolved
)

var stateNames = [...]string{"idle", "armed", "active", "resolved"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

type Mask uint8

const (
	MaskFog Mask = iota + 1
	MaskDecay
)

func (m Mask) String() string {
	switch m {
	case MaskFog:
		return "fog"
	case MaskDecay:
		return "decay"
	}
	return "none"
}

// QueuedCell is a player attack that will be masked once enough player
// turns have passed since Turn.
type QueuedCell struct {
	Target mb.Target `json:"target"`
	Turn   int       `json:"turn"`
}

type MaskedCell struct {
	Target mb.Target `json:"target"`
	Mask   Mask      `json:"mask"`
}

type Countdown struct {
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
	Running   bool `json:"running"`
}

// Engine applies one mission's modifiers around the combat resolver.
// Fog and decay only change what the player is shown; the board keeps
// the resolved cells.
type Engine struct {
	mission      Mission
	state        State
	turn         int
	fog          []QueuedCell
	decay        []QueuedCell
	masked       map[mb.Target]Mask
	shieldBroken map[mb.ShipType]bool
	mines        []int
	timer        Countdown
}

func NewEngine(m Mission) *Engine {
	return &Engine{
		mission:      m,
		masked:       make(map[mb.Target]Mask),
		shieldBroken: make(map[mb.ShipType]bool),
		timer:        Countdown{Total: m.TurnTimerSeconds, Remaining: m.TurnTimerSeconds},
	}
}

func (e *Engine) Mission() Mission {
	return e.mission
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Turn() int {
	return e.turn
}

func (e *Engine) Mines() []int {
	return slices.Clone(e.mines)
}

// Arm adds the mission's hazards to the opponent side. It must run after
// the opponent fleet is placed and before the treasure.
func (e *Engine) Arm(g *mb.Game, rng *rand.Rand) ([]mb.PlacementResult, error) {
	if e.state != StateIdle {
		return nil, cerr.WrongPhase(e.state.String())
	}

	var placed []mb.PlacementResult
	if e.mission.Has(ModReinforcements) {
		for _, shipType := range e.mission.ExtraShips {
			placed = append(placed, g.AddReinforcement(mb.SideOpponent, shipType, rng))
		}
	}
	if e.mission.Has(ModMines) {
		e.mines = g.PlaceMines(mb.SideOpponent, e.mission.MinesOn(), e.mission.MineCount, rng)
	}

	e.state = StateArmed
	return placed, nil
}

func (e *Engine) Begin() error {
	if e.state != StateArmed {
		return cerr.WrongPhase(e.state.String())
	}
	e.state = StateActive
	return nil
}

func (e *Engine) Active() bool {
	return e.state == StateActive
}

// BeforeAttack intercepts a player attack. The first strike on each
// enemy ship type is absorbed by its shield: the cell is untouched and
// no shot is counted.
func (e *Engine) BeforeAttack(g *mb.Game, layer mb.Layer, index int) (mb.AttackResult, bool) {
	if !e.Active() || !e.mission.Has(ModShields) || !layer.Valid() || !mb.ValidIndex(index) {
		return mb.AttackResult{}, false
	}

	cell := g.Side(mb.SideOpponent).Cell(layer, index)
	if cell.State != mb.CellOccupied || e.shieldBroken[cell.Ship] {
		return mb.AttackResult{}, false
	}

	e.shieldBroken[cell.Ship] = true
	return mb.AttackResult{
		Outcome:  mb.OutcomeShieldBlocked,
		Attacker: mb.SidePlayer,
		Layer:    layer,
		Index:    index,
		Ship:     cell.Ship,
	}, true
}

func (e *Engine) ShieldIntact(shipType mb.ShipType) bool {
	return e.mission.Has(ModShields) && !e.shieldBroken[shipType]
}

// AfterAttack does the bookkeeping for a resolved player attack.
func (e *Engine) AfterAttack(res mb.AttackResult) {
	if !e.Active() || res.Attacker != mb.SidePlayer {
		return
	}

	target := mb.Target{Layer: res.Layer, Index: res.Index}
	switch res.Outcome {
	case mb.OutcomeMiss:
		if e.mission.FogsLayer(res.Layer) {
			e.fog = append(e.fog, QueuedCell{Target: target, Turn: e.turn})
		}
	case mb.OutcomeHit:
		if e.mission.Has(ModHitDecay) {
			e.decay = append(e.decay, QueuedCell{Target: target, Turn: e.turn})
		}
	case mb.OutcomeMine:
		e.mines = slices.DeleteFunc(e.mines, func(i int) bool {
			return res.Layer == e.mission.MinesOn() && i == res.Index
		})
	}
}

// EndPlayerTurn advances the player turn counter and returns the cells
// that became masked.
func (e *Engine) EndPlayerTurn() []MaskedCell {
	if !e.Active() {
		return nil
	}
	e.turn++
	e.StopTimer()

	expired := make([]MaskedCell, 0)
	e.fog = e.expire(e.fog, e.mission.FogTurns, MaskFog, &expired)
	e.decay = e.expire(e.decay, e.mission.DecayTurns, MaskDecay, &expired)
	return expired
}

func (e *Engine) expire(queue []QueuedCell, turns int, mask Mask, expired *[]MaskedCell) []QueuedCell {
	return slices.DeleteFunc(queue, func(q QueuedCell) bool {
		if e.turn-q.Turn < turns {
			return false
		}
		e.masked[q.Target] = mask
		*expired = append(*expired, MaskedCell{Target: q.Target, Mask: mask})
		return true
	})
}

// Masked reports whether the player's view of an opponent cell is
// hidden.
func (e *Engine) Masked(layer mb.Layer, index int) (Mask, bool) {
	mask, ok := e.masked[mb.Target{Layer: layer, Index: index}]
	return mask, ok
}

func (e *Engine) HasTimer() bool {
	return e.mission.Has(ModTurnTimer)
}

// StartTimer starts or restarts the countdown for the player turn.
func (e *Engine) StartTimer() {
	if !e.Active() || !e.HasTimer() {
		return
	}
	e.timer.Remaining = e.timer.Total
	e.timer.Running = true
}

func (e *Engine) StopTimer() {
	e.timer.Running = false
}

func (e *Engine) TimerRemaining() (int, bool) {
	return e.timer.Remaining, e.timer.Running
}

// Tick advances the countdown by one second and reports expiry.
func (e *Engine) Tick() bool {
	if !e.timer.Running {
		return false
	}
	e.timer.Remaining--
	if e.timer.Remaining > 0 {
		return false
	}
	e.timer.Running = false
	return true
}

type Result struct {
	MissionID int     `json:"mission_id"`
	Won       bool    `json:"won"`
	Accuracy  float64 `json:"accuracy"`
	Stars     int     `json:"stars"`
}

func (e *Engine) Resolve(won bool, accuracy float64) Result {
	e.StopTimer()
	e.state = StateResolved
	return Result{
		MissionID: e.mission.ID,
		Won:       won,
		Accuracy:  accuracy,
		Stars:     e.mission.Stars.Award(won, accuracy),
	}
}

// EngineState is the serializable form of an Engine.
type EngineState struct {
	MissionID    int           `json:"mission_id"`
	State        State         `json:"state"`
	Turn         int           `json:"turn"`
	Fog          []QueuedCell  `json:"fog"`
	Decay        []QueuedCell  `json:"decay"`
	Masked       []MaskedCell  `json:"masked"`
	ShieldBroken []mb.ShipType `json:"shield_broken"`
	Mines        []int         `json:"mines"`
	Timer        Countdown     `json:"timer"`
}

func (e *Engine) Export() EngineState {
	s := EngineState{
		MissionID:    e.mission.ID,
		State:        e.state,
		Turn:         e.turn,
		Fog:          slices.Clone(e.fog),
		Decay:        slices.Clone(e.decay),
		Masked:       make([]MaskedCell, 0, len(e.masked)),
		ShieldBroken: make([]mb.ShipType, 0, len(e.shieldBroken)),
		Mines:        slices.Clone(e.mines),
		Timer:        e.timer,
	}
	for target, mask := range e.masked {
		s.Masked = append(s.Masked, MaskedCell{Target: target, Mask: mask})
	}
	slices.SortFunc(s.Masked, func(a, b MaskedCell) int {
		if a.Target.Layer != b.Target.Layer {
			return int(a.Target.Layer) - int(b.Target.Layer)
		}
		return a.Target.Index - b.Target.Index
	})
	for shipType := range e.shieldBroken {
		s.ShieldBroken = append(s.ShieldBroken, shipType)
	}
	slices.Sort(s.ShieldBroken)
	return s
}

func RestoreEngine(m Mission, s EngineState) *Engine {
	e := NewEngine(m)
	e.state = s.State
	e.turn = s.Turn
	e.fog = slices.Clone(s.Fog)
	e.decay = slices.Clone(s.Decay)
	e.mines = slices.Clone(s.Mines)
	e.timer = s.Timer
	for _, mc := range s.Masked {
		e.masked[mc.Target] = mc.Mask
	}
	for _, shipType := range s.ShieldBroken {
		e.shieldBroken[shipType] = true
	}
	return e
}
