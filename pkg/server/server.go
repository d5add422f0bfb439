package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/pkg/live"
	"github.com/vango-dev/toastd/pkg/middleware"
)

// Route paths owned by toastd.
const (
	ClientPath = "/_toast/client.js"
	LivePath   = "/_toast/live"
	NotifyPath = "/_toast/sessions/{id}/notify"
)

// Server serves toastd pages and their live connections.
type Server struct {
	config   *config.Config
	page     *Page
	sessions *live.Manager
	metrics  *middleware.Metrics
	registry *prometheus.Registry
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	mounts   []func(chi.Router)

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPage overrides the template named in the config.
func WithPage(p *Page) Option {
	return func(s *Server) {
		s.page = p
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithRoutes registers application routes, such as form handlers that
// answer with Redirect or RenderPage. They take precedence over the page
// catch-all.
func WithRoutes(fn func(r chi.Router)) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, fn)
	}
}

// WithCheckOrigin replaces the same-origin WebSocket check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a Server from a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     SameOriginCheck,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	base := s.logger
	s.logger = base.With("component", "server")

	if s.page == nil {
		page, err := LoadPage(cfg.TemplatePath())
		if err != nil {
			return nil, err
		}
		s.page = page
	}

	liveOpts := []live.Option{live.WithLogger(base)}
	if cfg.Metrics.Enabled {
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
			s.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		s.metrics = middleware.NewMetrics(middleware.WithRegistry(s.registry))
		liveOpts = append(liveOpts,
			live.WithObserver(s.metrics),
			live.WithRecorder(s.metrics),
		)
	}

	s.sessions = live.NewManager(liveConfig(cfg), liveOpts...)
	s.router = s.routes()

	s.logger.Debug("server configured",
		"page", s.page.Source(),
		"metrics", cfg.Metrics.Enabled,
		"toast_lifetime", cfg.ToastLifetime())
	return s, nil
}

// liveConfig maps file configuration onto session configuration.
func liveConfig(cfg *config.Config) live.Config {
	lc := live.DefaultConfig()
	lc.Toast = cfg.ToastConfig()
	lc.QueueSize = cfg.Live.QueueSize
	lc.MaxSessions = cfg.Live.MaxSessions
	lc.IdleTimeout = cfg.IdleTimeout()
	lc.HeartbeatInterval = cfg.Heartbeat()
	lc.ReadTimeout = 2*cfg.Heartbeat() + 10*time.Second
	lc.ClientScript = ClientPath
	lc.LivePath = LivePath
	return lc
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerName("github.com/vango-dev/toastd"),
		middleware.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != s.config.Metrics.Path
		}),
	))
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
		r.Method(http.MethodGet, s.config.Metrics.Path,
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	}

	r.Get(ClientPath, s.serveClient)
	r.Head(ClientPath, s.serveClient)
	r.Get(LivePath, s.handleLive)
	r.Post(NotifyPath, s.handleNotify)
	for _, mount := range s.mounts {
		mount(r)
	}
	r.Get("/*", s.handlePage)

	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the live session manager.
func (s *Server) Sessions() *live.Manager {
	return s.sessions
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every live session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout())
	defer cancel()

	if err := s.sessions.Shutdown(ctx); err != nil {
		s.logger.Warn("session shutdown error", "error", err)
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// SameOriginCheck accepts WebSocket upgrades whose Origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && originURL.Host == r.Host
}

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()))
		})
	}
}
