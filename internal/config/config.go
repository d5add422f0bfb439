package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/toast"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "toastd.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TOASTD_"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultLifetime is how long a toast stays on the page.
	DefaultLifetime = "3s"

	// DefaultIdleTimeout is how long a live session may sit without a
	// connection before it is reaped.
	DefaultIdleTimeout = "1m"

	// DefaultHeartbeat is the WebSocket ping interval.
	DefaultHeartbeat = "25s"

	// DefaultQueueSize is the per-session event loop queue size.
	DefaultQueueSize = 256

	// DefaultMaxSessions caps live sessions per server.
	DefaultMaxSessions = 10000

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete toastd.json configuration.
type Config struct {
	// Server contains HTTP listener settings.
	Server ServerConfig `json:"server,omitempty"`

	// Page contains page template settings.
	Page PageConfig `json:"page,omitempty"`

	// Toast contains the toast class names and lifetime.
	Toast ToastConfig `json:"toast,omitempty"`

	// Live contains live session settings.
	Live LiveConfig `json:"live,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty" env:"PORT"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`
}

// PageConfig contains page template settings.
type PageConfig struct {
	// Template is the path to the page markup. Empty uses the built-in page.
	Template string `json:"template,omitempty" env:"TEMPLATE"`
}

// ToastConfig contains the toast class names and lifetime.
type ToastConfig struct {
	ContainerClass string `json:"containerClass,omitempty" env:"TOAST_CONTAINER_CLASS"`
	ToastClass     string `json:"toastClass,omitempty" env:"TOAST_CLASS"`
	AnimationClass string `json:"animationClass,omitempty" env:"TOAST_ANIMATION_CLASS"`

	// Lifetime is how long a toast stays before removal (e.g., "3s").
	Lifetime string `json:"lifetime,omitempty" env:"TOAST_LIFETIME"`
}

// LiveConfig contains live session settings.
type LiveConfig struct {
	// IdleTimeout is how long a session without a connection or pending
	// toasts is kept.
	IdleTimeout string `json:"idleTimeout,omitempty" env:"IDLE_TIMEOUT"`

	// QueueSize is the event loop queue size per session.
	QueueSize int `json:"queueSize,omitempty" env:"QUEUE_SIZE"`

	// Heartbeat is the WebSocket ping interval.
	Heartbeat string `json:"heartbeat,omitempty" env:"HEARTBEAT"`

	// MaxSessions caps live sessions. Pages beyond it get 503.
	MaxSessions int `json:"maxSessions,omitempty" env:"MAX_SESSIONS"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty" env:"METRICS_ENABLED"`
	Path    string `json:"path,omitempty" env:"METRICS_PATH"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LOG_LEVEL"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" env:"LOG_FORMAT"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			Host:            DefaultHost,
			ShutdownTimeout: "10s",
		},
		Toast: ToastConfig{
			ContainerClass: "toast-container",
			ToastClass:     "toast",
			AnimationClass: "fade-slide",
			Lifetime:       DefaultLifetime,
		},
		Live: LiveConfig{
			IdleTimeout: DefaultIdleTimeout,
			QueueSize:   DefaultQueueSize,
			Heartbeat:   DefaultHeartbeat,
			MaxSessions: DefaultMaxSessions,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for toastd.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("T100").
				WithDetail("No toastd.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'toastd init' to write a default toastd.json")
		}
		return nil, errors.New("T101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("T101").
			WithDetail("Failed to parse toastd.json: " + err.Error()).
			WithSuggestion("Check that toastd.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Resolve builds the effective configuration for dir: defaults, then
// toastd.json if present, then environment overrides, then validation.
func Resolve(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "T100") {
		slog.Default().Debug("no config file, using defaults", "component", "config", "dir", dir)
		cfg, err = New(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TOASTD_* environment variables. Unset
// variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(env.Options{Prefix: EnvPrefix})
}

func (c *Config) applyEnv(opts env.Options) error {
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("T101").
			WithDetail("Invalid environment override: " + err.Error()).
			Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("T101").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("T101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if c.Toast.ContainerClass == "" {
		c.Toast.ContainerClass = d.Toast.ContainerClass
	}
	if c.Toast.ToastClass == "" {
		c.Toast.ToastClass = d.Toast.ToastClass
	}
	if c.Toast.AnimationClass == "" {
		c.Toast.AnimationClass = d.Toast.AnimationClass
	}
	if c.Toast.Lifetime == "" {
		c.Toast.Lifetime = d.Toast.Lifetime
	}

	if c.Live.IdleTimeout == "" {
		c.Live.IdleTimeout = d.Live.IdleTimeout
	}
	if c.Live.QueueSize == 0 {
		c.Live.QueueSize = d.Live.QueueSize
	}
	if c.Live.Heartbeat == "" {
		c.Live.Heartbeat = d.Live.Heartbeat
	}
	if c.Live.MaxSessions == 0 {
		c.Live.MaxSessions = d.Live.MaxSessions
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("T102").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}

	lifetime, err := time.ParseDuration(c.Toast.Lifetime)
	if err != nil || lifetime <= 0 {
		return errors.New("T103").
			WithDetail("toast.lifetime is " + strconv.Quote(c.Toast.Lifetime))
	}

	for name, value := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"live.idleTimeout":       c.Live.IdleTimeout,
		"live.heartbeat":         c.Live.Heartbeat,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return errors.New("T105").
				WithDetail(name + " is " + strconv.Quote(value))
		}
	}

	if c.Live.QueueSize < 1 {
		return errors.Newf(errors.CategoryConfig, "live.queueSize must be at least 1, got %d", c.Live.QueueSize)
	}
	if c.Live.MaxSessions < 1 {
		return errors.Newf(errors.CategoryConfig, "live.maxSessions must be at least 1, got %d", c.Live.MaxSessions)
	}

	if _, err := c.SlogLevel(); err != nil {
		return errors.Newf(errors.CategoryConfig, "log.level %q is not a level", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Newf(errors.CategoryConfig, "log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Address returns the host:port listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ToastLifetime returns the parsed toast lifetime.
func (c *Config) ToastLifetime() time.Duration {
	return parseDuration(c.Toast.Lifetime, 3*time.Second)
}

// ToastConfig returns the notifier configuration for the toast section.
func (c *Config) ToastConfig() toast.Config {
	return toast.Config{
		ContainerClass: c.Toast.ContainerClass,
		ToastClass:     c.Toast.ToastClass,
		AnimationClass: c.Toast.AnimationClass,
		Lifetime:       c.ToastLifetime(),
	}
}

// IdleTimeout returns the parsed live session idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	return parseDuration(c.Live.IdleTimeout, time.Minute)
}

// Heartbeat returns the parsed WebSocket ping interval.
func (c *Config) Heartbeat() time.Duration {
	return parseDuration(c.Live.Heartbeat, 25*time.Second)
}

// ShutdownTimeout returns the parsed graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// TemplatePath returns the page template path resolved against the
// config directory, or "" for the built-in page.
func (c *Config) TemplatePath() string {
	if c.Page.Template == "" || filepath.IsAbs(c.Page.Template) {
		return c.Page.Template
	}
	return filepath.Join(c.Dir(), c.Page.Template)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// parseDuration returns fallback for values Validate would reject.
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
