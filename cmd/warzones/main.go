package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/db/archive"
	"github.com/saeidalz13/warzones/db/local"
	mc "github.com/saeidalz13/warzones/models/connection"
	"github.com/saeidalz13/warzones/models/session"
	"github.com/saeidalz13/warzones/tui"
)

const connectTimeout = time.Second * 10

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	mission := flag.Int("mission", 0, "launch a campaign mission directly")
	savePath := flag.String("save", defaultSavePath(), "SQLite file for saved games and campaign progress")
	think := flag.Duration("think", time.Millisecond*800, "computer think time")
	seed := flag.Int64("seed", 0, "random seed for computer games (0 picks one)")
	archiveDir := flag.String("archive", os.Getenv("ARCHIVE_DIR"), "directory for parquet archives of finished games")
	serverUrl := flag.String("server", envOr("WARZONES_SERVER", "ws://localhost:8000/warzones"), "relay server for online games")
	host := flag.Bool("host", false, "create an online game and wait for an opponent")
	join := flag.String("join", "", "join the online game with this code")
	logPath := flag.String("log", os.Getenv("WARZONES_LOG"), "write logs to this file")
	player := flag.String("player", "local", "campaign save name")
	flag.Parse()

	logger, err := newLogger(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, options{
		mission:    *mission,
		savePath:   *savePath,
		think:      *think,
		seed:       *seed,
		archiveDir: *archiveDir,
		serverUrl:  *serverUrl,
		host:       *host,
		join:       *join,
		player:     *player,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	mission    int
	savePath   string
	think      time.Duration
	seed       int64
	archiveDir string
	serverUrl  string
	host       bool
	join       string
	player     string
}

func run(logger *zap.Logger, o options) error {
	st, err := local.Open(o.savePath, local.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := []tui.Option{
		tui.WithStore(st),
		tui.WithLogger(logger),
		tui.WithPlayer(o.player),
		tui.WithSeed(seed),
		tui.WithSessionOptions(session.WithThinkTime(o.think)),
	}
	if o.archiveDir != "" {
		opts = append(opts, tui.WithArchive(archive.NewWriter(o.archiveDir, archive.WithLogger(logger))))
	}
	if o.mission != 0 {
		opts = append(opts, tui.WithMission(o.mission))
	}

	if o.host || o.join != "" {
		client, err := connect(logger, o)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, tui.WithOnline(client, o.host))
	}

	_, err = tea.NewProgram(tui.New(opts...), tea.WithAltScreen()).Run()
	return err
}

// connect finds an opponent before the program takes over the terminal.
func connect(logger *zap.Logger, o options) (*mc.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mc.Dial(ctx, o.serverUrl, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", o.serverUrl, err)
	}

	if !o.host {
		if _, err := client.JoinGame(o.join); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	}

	code, err := client.CreateGame()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	fmt.Printf("game code: %s\nwaiting for an opponent...\n", code)
	waitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := client.WaitForOpponent(waitCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func defaultSavePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "warzones.db"
	}
	return filepath.Join(dir, "warzones", "warzones.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
