package campaign

import (
	_ "embed"
	"fmt"
	"slices"
	"time"

	"gopkg.in/yaml.v2"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/targeting"
)

type Modifier string

const (
	ModFogOfWar       Modifier = "fog_of_war"
	ModLayerFog       Modifier = "layer_fog"
	ModHitDecay       Modifier = "hit_decay"
	ModShields        Modifier = "shields"
	ModMines          Modifier = "mines"
	ModTurnTimer      Modifier = "turn_timer"
	ModReinforcements Modifier = "enemy_reinforcements"
	ModReducedFleet   Modifier = "reduced_fleet"
)

var knownModifiers = []Modifier{
	ModFogOfWar, ModLayerFog, ModHitDecay, ModShields,
	ModMines, ModTurnTimer, ModReinforcements, ModReducedFleet,
}

const (
	DefaultFogTurns         = 2
	DefaultDecayTurns       = 3
	DefaultTurnTimerSeconds = 10
	DefaultMineCount        = 3
)

type StarThresholds struct {
	Three float64 `yaml:"three" json:"three"`
	Two   float64 `yaml:"two" json:"two"`
}

// Award returns 0 stars for a loss and 1 to 3 for a win depending on the
// final accuracy in percent.
func (s StarThresholds) Award(won bool, accuracy float64) int {
	switch {
	case !won:
		return 0
	case accuracy >= s.Three:
		return 3
	case accuracy >= s.Two:
		return 2
	default:
		return 1
	}
}

type Mission struct {
	ID         int        `yaml:"id" json:"id"`
	Act        int        `yaml:"act" json:"act"`
	Name       string     `yaml:"name" json:"name"`
	Subtitle   string     `yaml:"subtitle" json:"subtitle"`
	Briefing   string     `yaml:"briefing" json:"briefing"`
	Difficulty string     `yaml:"difficulty" json:"difficulty"`
	Boss       string     `yaml:"boss" json:"boss,omitempty"`
	BossTitle  string     `yaml:"boss_title" json:"boss_title,omitempty"`
	Modifiers  []Modifier `yaml:"modifiers" json:"modifiers"`

	FogTurns         int           `yaml:"fog_turns" json:"fog_turns,omitempty"`
	FogLayers        []string      `yaml:"fog_layers" json:"fog_layers,omitempty"`
	DecayTurns       int           `yaml:"decay_turns" json:"decay_turns,omitempty"`
	TurnTimerSeconds int           `yaml:"turn_timer_seconds" json:"turn_timer_seconds,omitempty"`
	MineCount        int           `yaml:"mine_count" json:"mine_count,omitempty"`
	MineLayer        string        `yaml:"mine_layer" json:"mine_layer,omitempty"`
	ExtraShips       []mb.ShipType `yaml:"extra_ships" json:"extra_ships,omitempty"`
	RemovedShips     []mb.ShipType `yaml:"removed_ships" json:"removed_ships,omitempty"`

	AI    targeting.Overrides `yaml:"ai" json:"ai"`
	Stars StarThresholds      `yaml:"stars" json:"stars"`

	fogLayers []mb.Layer
	mineLayer mb.Layer
}

func (m *Mission) Has(mod Modifier) bool {
	return slices.Contains(m.Modifiers, mod)
}

// FogsLayer reports whether player misses on layer are fogged.
func (m *Mission) FogsLayer(layer mb.Layer) bool {
	if m.Has(ModFogOfWar) {
		return true
	}
	return m.Has(ModLayerFog) && slices.Contains(m.fogLayers, layer)
}

func (m *Mission) MinesOn() mb.Layer {
	return m.mineLayer
}

func (m *Mission) TurnTimer() time.Duration {
	return time.Duration(m.TurnTimerSeconds) * time.Second
}

// PlayerFleet is the standard fleet without the ships a reduced fleet
// mission removes.
func (m *Mission) PlayerFleet() []mb.ShipType {
	if !m.Has(ModReducedFleet) {
		return slices.Clone(mb.StandardFleet)
	}
	return slices.DeleteFunc(slices.Clone(mb.StandardFleet), func(t mb.ShipType) bool {
		return slices.Contains(m.RemovedShips, t)
	})
}

// prepare fills defaults and parses the layer names.
func (m *Mission) prepare() error {
	for _, mod := range m.Modifiers {
		if !slices.Contains(knownModifiers, mod) {
			return cerr.ErrInvalidModifier(string(mod))
		}
	}

	if m.FogTurns <= 0 {
		m.FogTurns = DefaultFogTurns
	}
	if m.DecayTurns <= 0 {
		m.DecayTurns = DefaultDecayTurns
	}
	if m.TurnTimerSeconds <= 0 {
		m.TurnTimerSeconds = DefaultTurnTimerSeconds
	}
	if m.MineCount <= 0 {
		m.MineCount = DefaultMineCount
	}
	if m.MineLayer == "" {
		m.MineLayer = mb.LayerSea.String()
	}

	layer, err := mb.ParseLayer(m.MineLayer)
	if err != nil {
		return err
	}
	m.mineLayer = layer

	m.fogLayers = make([]mb.Layer, 0, len(m.FogLayers))
	for _, name := range m.FogLayers {
		layer, err := mb.ParseLayer(name)
		if err != nil {
			return err
		}
		m.fogLayers = append(m.fogLayers, layer)
	}

	for _, shipType := range slices.Concat(m.ExtraShips, m.RemovedShips) {
		if _, ok := mb.SpecOf(shipType); !ok {
			return fmt.Errorf("mission %d: unknown ship %q", m.ID, shipType)
		}
	}
	return nil
}

type Act struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

//go:embed missions.yaml
var missionsYaml []byte

// Catalogue is the ordered list of campaign missions. Mission ids run
// from 1 to Len() without gaps.
type Catalogue struct {
	Acts     []Act     `yaml:"acts" json:"acts"`
	Missions []Mission `yaml:"missions" json:"missions"`
}

func LoadCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	for i := range c.Missions {
		if c.Missions[i].ID != i+1 {
			return nil, fmt.Errorf("mission at position %d has id %d", i+1, c.Missions[i].ID)
		}
		if err := c.Missions[i].prepare(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// MustLoadCatalogue parses the embedded mission list.
func MustLoadCatalogue() *Catalogue {
	c, err := LoadCatalogue(missionsYaml)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalogue) Len() int {
	return len(c.Missions)
}

func (c *Catalogue) Mission(id int) (Mission, error) {
	if id < 1 || id > len(c.Missions) {
		return Mission{}, cerr.MissionNotExists(id)
	}
	return c.Missions[id-1], nil
}

func (c *Catalogue) ActName(act int) string {
	for _, a := range c.Acts {
		if a.ID == act {
			return a.Name
		}
	}
	return ""
}

// Launch returns the mission if the player has unlocked it.
func (c *Catalogue) Launch(p *Progress, id int) (Mission, error) {
	m, err := c.Mission(id)
	if err != nil {
		return Mission{}, err
	}
	if id > p.HighestUnlocked {
		return Mission{}, cerr.MissionLocked(id, p.HighestUnlocked)
	}
	return m, nil
}

// Record stores a finished attempt and returns the stars it earned.
func (c *Catalogue) Record(p *Progress, id int, won bool, accuracy float64) (int, error) {
	m, err := c.Mission(id)
	if err != nil {
		return 0, err
	}
	return p.record(m, won, accuracy, c.Len()), nil
}
