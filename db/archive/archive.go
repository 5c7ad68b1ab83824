// Package archive writes finished games to parquet, one row per logged
// move, for offline analysis.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"go.uber.org/zap"

	mb "github.com/saeidalz13/warzones/models/battleship"
)

const schemaName = "warzones_move_v1"

// MoveRow is one entry of a finished game's log. Placement rows carry
// Positions; attack rows carry Index and Outcome.
type MoveRow struct {
	GameID    string  `parquet:"game_id,dict"`
	Seq       int32   `parquet:"seq"`
	Kind      string  `parquet:"kind,dict"`
	Side      string  `parquet:"side,dict"`
	Layer     string  `parquet:"layer,dict"`
	Index     int32   `parquet:"index"`
	Positions []int32 `parquet:"positions"`
	Ship      string  `parquet:"ship,dict,optional"`
	Outcome   string  `parquet:"outcome,dict,optional"`
	Winner    string  `parquet:"winner,dict"`
	Mission   int32   `parquet:"mission"`
}

// Game is what the archive needs to know about a finished game.
type Game struct {
	ID      string
	History []mb.Move
	Winner  mb.SideID
	// Mission is zero outside the campaign.
	Mission int
}

func Rows(g Game) []MoveRow {
	rows := make([]MoveRow, 0, len(g.History))
	for i, m := range g.History {
		row := MoveRow{
			GameID:  g.ID,
			Seq:     int32(i),
			Winner:  g.Winner.String(),
			Mission: int32(g.Mission),
			Index:   -1,
		}

		switch m.Kind {
		case mb.MovePlacement:
			p := m.Placement
			row.Kind = "placement"
			row.Side = p.Side.String()
			row.Layer = p.Layer.String()
			row.Ship = string(p.Ship)
			row.Positions = make([]int32, len(p.Positions))
			for j, pos := range p.Positions {
				row.Positions[j] = int32(pos)
			}
		case mb.MoveAttack:
			a := m.Attack
			row.Kind = "attack"
			row.Side = a.Attacker.String()
			row.Layer = a.Layer.String()
			row.Index = int32(a.Index)
			row.Ship = string(a.Ship)
			row.Outcome = a.Outcome.String()
		default:
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

type Writer struct {
	dir    string
	logger *zap.Logger
}

type Option func(*Writer)

func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteGame writes outDir/game_<id>.parquet through outDir/tmp so that
// readers never observe a partial file.
func (w *Writer) WriteGame(g Game) (string, error) {
	rows := Rows(g)
	if len(rows) == 0 {
		return "", fmt.Errorf("game %s has no moves to archive", g.ID)
	}

	tmpDir := filepath.Join(w.dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("game_%s.parquet", g.ID)
	finalPath := filepath.Join(w.dir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	w.logger.Info("game archived", zap.String("game", g.ID), zap.Int("moves", len(rows)), zap.String("path", finalPath))
	return finalPath, nil
}

// ReadGame loads an archived game in log order.
func ReadGame(path string) ([]MoveRow, error) {
	rows, err := parquet.ReadFile[MoveRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	slices.SortFunc(rows, func(a, b MoveRow) int { return int(a.Seq - b.Seq) })
	return rows, nil
}
