package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	clientdist "github.com/vango-dev/tooltip/client/dist"
	"github.com/vango-dev/tooltip/pkg/metrics"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

// TracerName is the name of the OpenTelemetry tracer used for message spans.
const TracerName = "github.com/vango-dev/tooltip/pkg/bridge"

// Config configures the bridge server.
type Config struct {
	// ReadTimeout is how long a connection may stay silent. Pongs count
	// as traffic.
	ReadTimeout time.Duration

	// WriteTimeout bounds every write.
	WriteTimeout time.Duration

	// HeartbeatInterval is the ping period. It must be shorter than
	// ReadTimeout.
	HeartbeatInterval time.Duration

	// MaxMessageBytes limits the size of a client message.
	MaxMessageBytes int64

	// QueueSize is the number of client messages buffered per session.
	QueueSize int

	// AllowedOrigins lists the origins allowed to connect. Empty allows
	// same-host requests only; "*" allows any origin.
	AllowedOrigins []string

	// Defaults are the ambient tooltip options for every session.
	Defaults tooltip.Options

	Logger *slog.Logger

	// Metrics is optional. Gatherer, when set, is served at MetricsPath.
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageBytes:   64 * 1024,
		QueueSize:         64,
		Defaults:          tooltip.DefaultOptions(),
		Logger:            slog.Default(),
		MetricsPath:       "/metrics",
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	cp := *c
	if cp.ReadTimeout <= 0 {
		cp.ReadTimeout = d.ReadTimeout
	}
	if cp.WriteTimeout <= 0 {
		cp.WriteTimeout = d.WriteTimeout
	}
	if cp.HeartbeatInterval <= 0 {
		cp.HeartbeatInterval = d.HeartbeatInterval
	}
	if cp.MaxMessageBytes <= 0 {
		cp.MaxMessageBytes = d.MaxMessageBytes
	}
	if cp.QueueSize <= 0 {
		cp.QueueSize = d.QueueSize
	}
	if cp.Logger == nil {
		cp.Logger = d.Logger
	}
	if cp.MetricsPath == "" {
		cp.MetricsPath = d.MetricsPath
	}
	return &cp
}

// Server accepts bridge connections and owns their sessions.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader
	tracer   trace.Tracer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a server. A nil config uses DefaultConfig.
func New(config *Config) *Server {
	config = config.withDefaults()
	s := &Server{
		config:   config,
		tracer:   otel.Tracer(TracerName),
		logger:   config.Logger.With("component", "bridge"),
		sessions: make(map[string]*Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Routes returns the HTTP routes:
//
//	GET /ws         bridge websocket
//	GET /healthz    liveness and session count
//	GET /client.js  browser client
//	GET /metrics    Prometheus metrics, when a Gatherer is configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get("/client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Write(clientdist.ClientJS)
	})
	if s.config.Gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// HandleWebSocket upgrades the request and starts a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.config.Metrics.RecordWebSocketError("upgrade")
		return
	}
	conn.SetReadLimit(s.config.MaxMessageBytes)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	session := newSession(conn, s.config, s.tracer)
	session.onClose = s.remove

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	s.config.Metrics.SessionOpened()

	session.logger.Info("session started", "remote", r.RemoteAddr)
	if err := session.send(ServerMessage{Type: ServerReady, Session: session.ID}); err != nil {
		session.Close()
		return
	}
	session.Start()
}

func (s *Server) remove(session *Session) {
	s.mu.Lock()
	_, ok := s.sessions[session.ID]
	delete(s.sessions, session.ID)
	s.mu.Unlock()
	if ok {
		s.config.Metrics.SessionClosed()
	}
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown closes every session. It returns early if ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		session.Close()
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	if len(s.config.AllowedOrigins) > 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
