package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dudumsantos1976-design/power-lift-control/internal/equipment"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/config"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/logging"
	"github.com/dudumsantos1976-design/power-lift-control/internal/operator"
	"github.com/dudumsantos1976-design/power-lift-control/internal/session"
	"github.com/dudumsantos1976-design/power-lift-control/internal/settings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Equipment equipment.Repository
	Operators operator.Repository
	Sessions  *session.Service
	Ledger    session.Repository
	Settings  *settings.Repository
	Version   string
}

// Server is the HTTP API server for PowerLift Control.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start(); all methods are safe
// for concurrent use.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	equipment equipment.Repository
	operators operator.Repository
	sessions  *session.Service
	ledger    session.Repository
	settings  *settings.Repository
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Equipment == nil {
		return nil, fmt.Errorf("equipment repository is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		equipment: deps.Equipment,
		operators: deps.Operators,
		sessions:  deps.Sessions,
		ledger:    deps.Ledger,
		settings:  deps.Settings,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
