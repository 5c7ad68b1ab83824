package session

import (
	"slices"
	"testing"

	mb "github.com/saeidalz13/warzones/models/battleship"
)

func (r *recorder) outcomes(side mb.SideID) []mb.Outcome {
	var out []mb.Outcome
	for _, e := range r.events {
		if e.Kind == EventAttack && e.Side == side {
			out = append(out, e.Attack.Outcome)
		}
	}
	return out
}

func TestShields(t *testing.T) {
	t.Run("single shot block ends the turn", func(t *testing.T) {
		h := newHarness(t, WithMission(mustMission(t, 9)))
		h.startCombat(t)

		target := h.cellWith(t, mb.SideOpponent, mb.CellOccupied)
		if err := h.c.Select(target.Layer, target.Index); err != nil {
			t.Fatal(err)
		}
		if got := h.rec.outcomes(mb.SidePlayer); len(got) != 1 || got[0] != mb.OutcomeShieldBlocked {
			t.Fatalf("expected: [%s]\t got: %v", mb.OutcomeShieldBlocked, got)
		}
		if h.c.Shots(mb.SidePlayer).Total != 0 {
			t.Fatalf("expected no shot counted\t got: %d", h.c.Shots(mb.SidePlayer).Total)
		}
		if h.c.Current() != mb.SideOpponent {
			t.Fatalf("expected turn: %s\t got: %s", mb.SideOpponent, h.c.Current())
		}
	})

	t.Run("volley continues when another cell hits", func(t *testing.T) {
		h := newHarness(t, WithMission(mustMission(t, 9)))
		h.startCombat(t)
		h.findTreasure(t)
		if err := h.c.ChoosePowerup(mb.PowerupCannonBall); err != nil {
			t.Fatal(err)
		}

		craft, ok := h.c.game.Side(mb.SideOpponent).Ship(mb.Spacecraft)
		if !ok {
			t.Fatal("expected a spacecraft")
		}
		before := len(h.rec.outcomes(mb.SidePlayer))
		if err := h.c.Select(mb.LayerSpace, slices.Min(craft.Positions)); err != nil {
			t.Fatal(err)
		}

		volley := h.rec.outcomes(mb.SidePlayer)[before:]
		blocked, hits := 0, 0
		for _, o := range volley {
			switch o {
			case mb.OutcomeShieldBlocked:
				blocked++
			case mb.OutcomeHit:
				hits++
			}
		}
		if blocked != 1 || hits != 3 {
			t.Fatalf("expected 1 blocked and 3 hits\t got: %v", volley)
		}
		if len(craft.Hits) != 3 {
			t.Fatalf("expected spacecraft hits: 3\t got: %d", len(craft.Hits))
		}
		if h.c.Current() != mb.SidePlayer {
			t.Fatalf("expected turn: %s\t got: %s", mb.SidePlayer, h.c.Current())
		}
	})
}
