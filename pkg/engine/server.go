package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getvisid/visid/pkg/config"
	"github.com/getvisid/visid/pkg/consent"
	"github.com/getvisid/visid/pkg/cookie"
	"github.com/getvisid/visid/pkg/logging"
	"github.com/getvisid/visid/pkg/source"
	"github.com/getvisid/visid/pkg/visitor"
)

// Server is the visid HTTP server.
type Server struct {
	cfg  *config.Config
	log  *slog.Logger
	gate *consent.Gate

	httpServer *http.Server
	listener   net.Listener

	// Feed-driven local visitor state, active when cfg.ConsentFeed is set.
	localMu  sync.Mutex
	localJar *cookie.MemoryJar
	local    *visitor.Manager
	feed     *source.WSSource

	mu        sync.Mutex
	running   bool
	startTime time.Time
	cancelBg  context.CancelFunc
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithListener serves on an existing listener instead of cfg.Listen.
// Tests use this to bind an ephemeral port.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// New creates a server from cfg.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
		gate: &consent.Gate{
			OptInRequired:    cfg.OptInRequired,
			PreferenceCookie: cfg.PreferencesCookie,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.localJar = cookie.NewMemoryJar()
	s.local = visitor.NewManager(s.localJar, s.gate, s.managerOpts()...)

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.buildHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) managerOpts() []visitor.Option {
	opts := []visitor.Option{visitor.WithLogger(s.log)}
	if s.cfg.VisitorCookie != "" {
		opts = append(opts, visitor.WithCookieName(s.cfg.VisitorCookie))
	}
	return opts
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/visitor", s.handleVisitor)
	mux.HandleFunc("/consent", s.handleConsent)
	mux.HandleFunc("/state", s.handleState)

	var mwOpts []visitor.Option
	if s.cfg.VisitorCookie != "" {
		mwOpts = append(mwOpts, visitor.WithCookieName(s.cfg.VisitorCookie))
	}
	return visitor.NewMiddleware(mux, s.gate, s.cfg.Domain, s.log, mwOpts...)
}

// Start begins serving. It returns once the listener is bound; serving
// continues on background goroutines until Shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("server already running")
	}

	if s.listener == nil {
		l, err := net.Listen("tcp", s.cfg.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
		}
		s.listener = l
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.cancelBg = cancel

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server failed", "error", err)
		}
	}()

	if s.cfg.ConsentFeed != "" {
		s.feed = source.NewWSSource(s.cfg.ConsentFeed, source.WithWSLogger(s.log))
		discovery := source.NewDiscovery(s.feed.Probe(), source.WithLogger(s.log))
		go discovery.Run(bgCtx, s.applyFeedEvent)
	}

	s.running = true
	s.startTime = time.Now()
	s.log.Info("visid server started", "listen", s.Addr(), "consentFeed", s.cfg.ConsentFeed != "")
	return nil
}

// applyFeedEvent mirrors a consent feed event into the local visitor
// state. The feed pump is the only writer, but /state reads concurrently.
func (s *Server) applyFeedEvent(categories []string) {
	s.localMu.Lock()
	defer s.localMu.Unlock()
	s.local.HandleConsentChange(categories)
}

// Addr returns the bound listen address, useful with ephemeral ports.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Listen
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if s.cancelBg != nil {
		s.cancelBg()
	}
	if s.feed != nil {
		s.feed.Close()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("visid server stopped")
	return nil
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}
