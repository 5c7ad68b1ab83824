package battleship

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := newFixedGame(t)
	g.PlaceTreasureAt(SideOpponent, 9)
	g.PlaceMineAt(SideOpponent, LayerSpace, 15)
	g.AddExtraUnit(SidePlayer, 0)

	mustAttack(t, g, SidePlayer, LayerSea, 0)
	mustAttack(t, g, SideOpponent, LayerSpace, 10)
	mustAttack(t, g, SidePlayer, LayerSpace, 15)

	blob, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		t.Fatal(err)
	}
	restored, err := RestoreGame(snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Id() != g.Id() {
		t.Fatalf("expected id: %s\t got: %s", g.Id(), restored.Id())
	}

	sequence := []struct {
		attacker SideID
		layer    Layer
		index    int
	}{
		{SidePlayer, LayerSea, 1},
		{SidePlayer, LayerSea, 2},
		{SidePlayer, LayerSub, 9},
		{SidePlayer, LayerSea, 0},
		{SideOpponent, LayerSky, 0},
		{SideOpponent, LayerSky, 15},
		{SidePlayer, LayerSky, 15},
	}

	for _, step := range sequence {
		want, wantErr := g.ProcessAttack(step.attacker, step.layer, step.index)
		got, gotErr := restored.ProcessAttack(step.attacker, step.layer, step.index)

		if (wantErr == nil) != (gotErr == nil) {
			t.Fatalf("expected error: %v\t got: %v", wantErr, gotErr)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("expected result: %+v\t got: %+v", want, got)
		}
	}

	if !reflect.DeepEqual(g.Snapshot(), restored.Snapshot()) {
		t.Fatal("expected identical state after identical attacks")
	}
}

func TestRestoreGameRejectsCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
	}{
		{name: "missing sides", snapshot: Snapshot{Id: "abc"}},
		{name: "missing id", snapshot: Snapshot{Sides: [2]*Side{NewSide(nil), NewSide(nil)}}},
		{
			name: "ship key mismatch",
			snapshot: Snapshot{Id: "abc", Sides: [2]*Side{
				{Ships: map[ShipType]*Ship{Cruiser: {Type: Battleship}}},
				NewSide(nil),
			}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := RestoreGame(test.snapshot); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
