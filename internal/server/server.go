// Package server serves the public site, the admin pages and the editor
// API over HTTP.
package server

import (
	"context"
	"html/template"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rdharma/folio/internal/auth"
	"github.com/rdharma/folio/internal/blob"
	"github.com/rdharma/folio/internal/casestudy"
	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/post"
)

const (
	maxBodySize            = 1 << 20 // 1 MiB
	defaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	// Address is host:port or unix:///path/to/socket.
	Address         string
	ShutdownTimeout time.Duration
	Site            config.ConfigSite
	// Filters restrict the posts listed on /blog.
	Filters []*config.Filter
}

// Deps are the collaborators of the handlers. Blobs may be nil when
// uploads are not configured.
type Deps struct {
	Posts       *post.Service
	CaseStudies *casestudy.Library
	Auth        *auth.Auth
	Blobs       *blob.Store
}

type Server struct {
	cfg        *Config
	deps       Deps
	lis        net.Listener
	socket     string
	httpServer *http.Server
	handler    http.Handler
	templates  map[string]*template.Template
	metrics    *metrics
	logger     *zap.Logger
}

func New(cfg *Config, deps Deps, logger *zap.Logger) (_ *Server, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	addr := cfg.Address
	protocol := "tcp"
	socket := ""

	if strings.HasPrefix(addr, "unix://") {
		protocol = "unix"
		addr = strings.TrimPrefix(addr, "unix://")
		socket = addr

		if _, err := os.Stat(addr); !os.IsNotExist(err) {
			return nil, errors.Errorf("socket %s already exists", addr)
		}
	}

	lis, err := net.Listen(protocol, addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.Info("server listening", zap.String("address", lis.Addr().String()))

	s := &Server{
		cfg:       cfg,
		deps:      deps,
		lis:       lis,
		socket:    socket,
		templates: templates,
		metrics:   newMetrics(),
		logger:    logger,
	}
	s.handler = s.middleware(s.routes())
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}
	return s, nil
}

func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Handler returns the root handler including logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.WithStack(err)
}

// Shutdown stops accepting connections and waits for active requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.lis.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		err = multierr.Append(err, cerr)
	}
	if s.socket != "" {
		if rerr := os.Remove(s.socket); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, rerr)
		}
	}
	return errors.WithStack(err)
}

// Run serves until ctx is canceled, then shuts down gracefully. The case
// study watcher runs alongside the server.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(s.Serve)

	if s.deps.CaseStudies != nil {
		g.Go(func() error {
			return s.deps.CaseStudies.Watch(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("shutting down server", zap.Duration("timeout", timeout))
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
