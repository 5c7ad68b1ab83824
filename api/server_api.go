package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/db/sqlc"
	"github.com/saeidalz13/warzones/db/store"
	mb "github.com/saeidalz13/warzones/models/battleship"
	"github.com/saeidalz13/warzones/models/campaign"
	mc "github.com/saeidalz13/warzones/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

const (
	defaultPort          = 8000
	maxTimeGame          = time.Minute * 30
	matchCleanupInterval = time.Minute * 5
	shutdownTimeout      = time.Second * 10
)

type Server struct {
	port      int
	stage     string
	logger    *zap.Logger
	catalogue *campaign.Catalogue
	store     store.Store
	analytics *sqlc.AnalyticsManager
	progress  *playerLocks

	SessionManager *mc.WarzonesSessionManager
	GameManager    *mb.BattleshipGameManager

	router *mux.Router
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		port:      defaultPort,
		stage:     StageDev,
		logger:    zap.NewNop(),
		catalogue: campaign.MustLoadCatalogue(),
		progress:  newPlayerLocks(),
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}
	if server.store == nil {
		server.store = store.NewMemory()
	}

	server.SessionManager = mc.NewWarzonesSessionManager(mc.WithManagerLogger(server.logger))
	server.GameManager = mb.NewBattleshipGameManager()
	server.router = server.routes()
	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithDb keeps snapshots and progress in Postgres and turns on the
// per-server analytics.
func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		manager := sqlc.NewDbManager(sqlc.New(db))
		s.analytics = manager.Analytics
		s.store = store.NewPostgres(manager.Queries)
		return nil
	}
}

func WithStore(st store.Store) Option {
	return func(s *Server) error {
		s.store = st
		return nil
	}
}

func WithCatalogue(c *campaign.Catalogue) Option {
	return func(s *Server) error {
		s.catalogue = c
		return nil
	}
}

func (s *Server) routes() *mux.Router {
	rp := NewRequestProcessor(s.SessionManager, s.GameManager, s.analytics, s.logger)

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Handle("/warzones", rp).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/missions", s.handleMissions).Methods(http.MethodGet)
	r.HandleFunc("/missions/{id:[0-9]+}", s.handleMission).Methods(http.MethodGet)

	r.HandleFunc("/progress/{player}", s.handleGetProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/{player}/missions/{id:[0-9]+}", s.handleRecordMission).Methods(http.MethodPost)

	r.HandleFunc("/snapshots/{id}", s.handlePutSnapshot).Methods(http.MethodPut)
	r.HandleFunc("/snapshots/{id}", s.handleGetSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/snapshots/{id}", s.handleDeleteSnapshot).Methods(http.MethodDelete)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// manageMatches drops finished and abandoned matches.
func (s *Server) manageMatches(ctx context.Context) {
	ticker := time.NewTicker(matchCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if removed := s.GameManager.CleanupStale(maxTimeGame); len(removed) > 0 {
			s.logger.Info("stale matches removed", zap.Strings("codes", removed))
		}
	}
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.SessionManager.CleanupPeriodically(ctx)
	go s.manageMatches(ctx)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: time.Second * 5,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.Int("port", s.port), zap.String("stage", s.stage))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
