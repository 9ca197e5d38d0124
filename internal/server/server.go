// ABOUTME: Server orchestrator that owns the store, actors, and HTTP listener
// ABOUTME: Seeds the initial generation and manages component lifecycle

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/sensorwatch/internal/classify"
	"github.com/2389/sensorwatch/internal/config"
	"github.com/2389/sensorwatch/internal/simulate"
	"github.com/2389/sensorwatch/internal/store"
)

// Server orchestrates the sensorwatch components: the shared store, the three
// background actors (producer, resetter, validator) and the HTTP API serving
// the dashboard client.
type Server struct {
	config     *config.Config
	store      store.Store
	producer   *simulate.Producer
	resetter   *simulate.Resetter
	validator  *classify.Validator
	httpServer *http.Server
	logger     *slog.Logger

	// instanceID identifies this server instance in logs and health output
	instanceID string
}

// New creates a server from the given configuration. The store is created,
// the initial generation seeded, and the HTTP routes wired; nothing runs
// until Run is called. Store creation failure is the only fatal condition.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st, err := initStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	s, err := newWithStore(cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	// The store starts empty and is immediately seeded
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	gen, err := st.Seed(context.Background(), simulate.SeedValues(rng))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("seeding initial generation: %w", err)
	}
	logger.Info("initial generation seeded", "generation", gen, "readings", simulate.SeedSize)

	return s, nil
}

// newWithStore wires a server around an existing store. Split from New so
// tests can inject a mock store.
func newWithStore(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		config:     cfg,
		store:      st,
		logger:     logger.With("component", "server"),
		instanceID: uuid.New().String(),
	}

	s.producer = simulate.NewProducer(
		st,
		cfg.Simulation.ProducerInterval,
		cfg.Simulation.AnomalyProbability,
		rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger,
	)
	s.resetter = simulate.NewResetter(
		st,
		cfg.Simulation.ResetInterval,
		rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger,
	)
	s.validator = classify.NewValidator(
		st,
		classify.NewMADDetector(),
		cfg.Simulation.ClassifierInterval,
		logger,
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.corsMiddleware()(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// initStore creates the store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("SENSORWATCH_DB_PATH"); envPath != "" {
		dbPath = envPath
	}
	return store.NewSQLiteStore(dbPath)
}

// routes builds the HTTP router.
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/dashboard-data", s.handleDashboardData).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReady).Methods(http.MethodGet)

	if s.config.Metrics.Enabled {
		r.Handle(s.config.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		s.logger.Info("metrics endpoint enabled", "path", s.config.Metrics.Path)
	}

	return r
}

// corsMiddleware builds the CORS layer for the dashboard client.
// With no configured origins, any origin is allowed (development mode).
func (s *Server) corsMiddleware() func(http.Handler) http.Handler {
	origins := s.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
		s.logger.Warn("no allowed_origins configured, allowing all origins")
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
}

// Run starts the background actors and the HTTP listener, then blocks until
// ctx is canceled or the listener fails. In-flight actor cycles run to
// completion during shutdown; no actor is interrupted mid-cycle.
func (s *Server) Run(ctx context.Context) error {
	actorCtx, stopActors := context.WithCancel(context.Background())
	defer stopActors()

	var wg sync.WaitGroup
	for _, run := range []func(context.Context){
		s.producer.Run,
		s.resetter.Run,
		s.validator.Run,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(actorCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening",
			"addr", s.httpServer.Addr,
			"instance_id", s.instanceID,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		serverErr = fmt.Errorf("http server: %w", err)
	}

	shutdownErr := s.shutdown(stopActors, &wg)
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// shutdown stops the listener, waits for the actors, and closes the store.
func (s *Server) shutdown(stopActors context.CancelFunc, wg *sync.WaitGroup) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		err = fmt.Errorf("shutting down http server: %w", shutdownErr)
	}

	stopActors()
	wg.Wait()

	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing store: %w", closeErr)
	}

	s.logger.Info("server stopped")
	return err
}
