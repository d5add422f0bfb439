package live

import (
	"log/slog"
	"time"

	"github.com/vango-dev/toastd/pkg/toast"
)

// Config configures sessions created by a Manager.
type Config struct {
	// Toast holds the class names and lifetime used by each notifier.
	Toast toast.Config

	// QueueSize is the event loop queue size per session.
	QueueSize int

	// OutboxSize is the number of frames buffered while no browser is
	// connected. Frames beyond it are dropped.
	OutboxSize int

	// MaxSessions caps the sessions a Manager holds. Zero means no limit.
	MaxSessions int

	// IdleTimeout is how long a disconnected session with no pending
	// removals is kept.
	IdleTimeout time.Duration

	// CleanupInterval is how often idle sessions are reaped.
	CleanupInterval time.Duration

	// HeartbeatInterval is how often a ping frame is sent.
	HeartbeatInterval time.Duration

	// ReadTimeout is how long to wait for any message from the browser.
	// Browsers answer every ping, so it must exceed HeartbeatInterval.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// ClientScript is the src of the client script injected into each
	// page. Empty disables injection.
	ClientScript string

	// LivePath is the WebSocket endpoint the client connects to.
	LivePath string
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Toast:             toast.DefaultConfig(),
		QueueSize:         256,
		OutboxSize:        64,
		IdleTimeout:       time.Minute,
		CleanupInterval:   10 * time.Second,
		HeartbeatInterval: 25 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		ClientScript:      "/_toast/client.js",
		LivePath:          "/_toast/live",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = d.OutboxSize
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.ReadTimeout <= c.HeartbeatInterval {
		c.ReadTimeout = 2*c.HeartbeatInterval + 10*time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.LivePath == "" {
		c.LivePath = d.LivePath
	}
	return c
}

// Recorder receives session and frame counts, typically for metrics.
type Recorder interface {
	SessionOpened()
	SessionClosed()
	FramesSent(count int)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened() {}
func (nopRecorder) SessionClosed() {}
func (nopRecorder) FramesSent(int) {}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger every session's loggers derive from.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.base = logger
		}
	}
}

// WithObserver reports toast lifecycle events of every session to o.
func WithObserver(o toast.Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithRecorder reports session and frame counts to r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}
