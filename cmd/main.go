package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/api"
	"github.com/saeidalz13/warzones/db"
)

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}
	stage := os.Getenv("STAGE")
	if stage != api.StageDev && stage != api.StageProd {
		panic("stage must be either dev or prod")
	}
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(stage)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	opts := []api.Option{api.WithPort(port), api.WithStage(stage), api.WithLogger(logger)}
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		migrationDir := os.Getenv("MIGRATION_DIR")
		if migrationDir == "" {
			migrationDir = db.DefaultMigrationDir
		}
		opts = append(opts, api.WithDb(db.MustConnectToDb(psqlUrl, migrationDir, logger)))
	} else {
		logger.Warn("DATABASE_URL not set, snapshots and progress are kept in memory")
	}

	server := api.NewServer(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server shut down")
}

func newLogger(stage string) (*zap.Logger, error) {
	if stage == api.StageProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
