package targeting

import (
	"math/rand"

	mb "github.com/saeidalz13/warzones/models/battleship"
)

type Preference uint8

const (
	PreferEdge Preference = iota
	PreferCenter
)

func (p Preference) String() string {
	if p == PreferCenter {
		return "center"
	}
	return "edge"
}

// Personality varies the computer's play from game to game.
type Personality struct {
	// Chance of ignoring every heuristic and firing at a random legal cell.
	Unpredictability  float64    `json:"unpredictability"`
	EdgePreference    Preference `json:"edge_preference"`
	ClusterPreference bool       `json:"cluster_preference"`
	Seed              int        `json:"seed"`
}

func RandomPersonality(rng *rand.Rand) Personality {
	p := Personality{
		Unpredictability:  0.15 + rng.Float64()*0.2,
		EdgePreference:    PreferEdge,
		ClusterPreference: rng.Float64() > 0.7,
		Seed:              rng.Intn(1000),
	}
	if rng.Float64() >= 0.5 {
		p.EdgePreference = PreferCenter
	}
	return p
}

// Overrides pins personality traits, e.g. per campaign mission.
type Overrides struct {
	Unpredictability  *float64 `yaml:"unpredictability" json:"unpredictability,omitempty"`
	ClusterPreference *bool    `yaml:"cluster_preference" json:"cluster_preference,omitempty"`
}

type skyPattern uint8

const (
	skyPatternEven skyPattern = iota
	skyPatternOdd
	skyPatternThirds
	skyPatternDiagonals
	skyPatternHashed
)

const skyPatternCount = 5

func (p skyPattern) matches(row, col, seed int) bool {
	switch p {
	case skyPatternEven:
		return (row+col)%2 == 0
	case skyPatternOdd:
		return (row+col)%2 == 1
	case skyPatternThirds:
		return (row+col)%3 == 0
	case skyPatternDiagonals:
		return row == col || row+col == mb.BoardSize-1
	default:
		return (row*3+col*7+seed)%4 < 2
	}
}
