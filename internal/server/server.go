// Package server exposes the plot engine over HTTP. Plot runs are
// asynchronous: a submission creates a job, a worker goroutine produces
// the files under a per-job work directory, and clients poll the job
// until it settles. Jobs and their files expire together after a TTL.
package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"

	"github.com/boardplot/boardplot/pkg/cache"
)

// Config carries server settings. Zero values select working defaults.
type Config struct {
	// Addr is the listen address, default ":8080".
	Addr string

	// WorkDir receives per-job output directories. Defaults to a
	// boardplot directory under the system temp dir.
	WorkDir string

	// JobTTL is how long finished jobs and their files are kept,
	// default one hour.
	JobTTL time.Duration

	// Logger receives request and job logs. Defaults to the standard
	// logger.
	Logger *log.Logger

	// Cache stores rendered stackup images. Defaults to no caching.
	Cache cache.Cache
}

// Server is the HTTP plot service.
type Server struct {
	cfg    Config
	logger *log.Logger
	store  *MemoryStore
	cache  cache.Cache
	keyer  cache.Keyer
	cron   *cron.Cron
	start  time.Time
}

// New creates a server and its work directory.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(os.TempDir(), "boardplot")
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		store:  NewMemoryStore(),
		cache:  cfg.Cache,
		keyer:  cache.NewDefaultKeyer(),
		cron:   cron.New(),
		start:  time.Now(),
	}
	if err := s.scheduleCleanup(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.logRequests, s.recoverPanics)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Get("/layers", s.handleLayers)
		r.Get("/stackup", s.handleStackup)
		r.Post("/plot", s.handlePlotSubmit)
		r.Get("/jobs/{id}", s.handleJobGet)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Run serves until the context is canceled, then drains in-flight
// requests. The cleanup schedule runs for the lifetime of the call.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.cron.Start()
	defer s.cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", s.cfg.Addr, "workdir", s.cfg.WorkDir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// jobDir returns the output directory for one job.
func (s *Server) jobDir(id string) string {
	return filepath.Join(s.cfg.WorkDir, id)
}
