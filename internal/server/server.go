// Package server runs the HTTP API and its background workers until the
// process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aman-gurjar-dev/TechnoHack/internal/bootstrap"
	"github.com/aman-gurjar-dev/TechnoHack/internal/config"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	deps   *bootstrap.Dependencies
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, lgr)
	return New(cfg, router, deps, lgr), nil
}

// New assembles a server from already built parts.
func New(cfg *config.Config, handler http.Handler, deps *bootstrap.Dependencies, lgr zerolog.Logger) *Server {
	if deps == nil {
		deps = &bootstrap.Dependencies{}
	}
	return &Server{
		config: cfg,
		deps:   deps,
		logger: lgr,
		http: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           handler,
			ReadTimeout:       config.Duration(cfg.Server.ReadTimeout),
			ReadHeaderTimeout: config.Duration(cfg.Server.ReadTimeout),
			WriteTimeout:      config.Duration(cfg.Server.WriteTimeout),
			IdleTimeout:       config.Duration(cfg.Server.IdleTimeout),
		},
	}
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or a component
// fails, then shuts everything down. A clean stop returns nil.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.guard("http", func() error {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}))

	if q := s.deps.Queue; q != nil {
		g.Go(s.guard("jobs", func() error {
			// River gets its own context so that shutdown stops it gracefully.
			if err := q.Start(context.WithoutCancel(gctx)); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return nil
			case <-q.Stopped():
				if gctx.Err() != nil {
					return nil
				}
				return errors.New("job queue stopped unexpectedly")
			}
		}))
	}

	g.Go(s.guard("shutdown", func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			s.logger.Info().Msg("Shutdown requested, stopping...")
		}
		return s.Shutdown(context.Background())
	}))

	return g.Wait()
}

// guard turns a panic in fn into an error so the group shuts the process
// down instead of crashing mid-request.
func (s *Server) guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("goroutine", name).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				err = fmt.Errorf("%s: panic: %v", name, r)
			}
		}()
		return fn()
	}
}

// Shutdown stops the HTTP server, the job queue, the cache and the pool, in that order.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := config.Duration(s.config.Server.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		errs = append(errs, err)
	}

	if s.deps.Queue != nil {
		if err := s.deps.Queue.Stop(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Job queue shutdown error")
			errs = append(errs, err)
		}
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Cache close error")
			errs = append(errs, err)
		}
	}

	if s.deps.DB != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.deps.DB.Close()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(errs...)
}
