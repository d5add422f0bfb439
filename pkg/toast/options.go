package toast

import (
	"log/slog"
	"time"
)

// Defaults for the page contract.
const (
	DefaultContainerClass = "toast-container"
	DefaultToastClass     = "toast"
	DefaultAnimationClass = "fade-slide"
	DefaultLifetime       = 3000 * time.Millisecond
)

// Config holds the class names and lifetime a Notifier uses.
type Config struct {
	// ContainerClass locates and tags the container (default: "toast-container").
	ContainerClass string

	// ToastClass is the first class of every toast (default: "toast").
	ToastClass string

	// AnimationClass is the last class of every toast (default: "fade-slide").
	AnimationClass string

	// Lifetime is how long a toast stays before removal (default: 3s).
	Lifetime time.Duration
}

// DefaultConfig returns the default page contract.
func DefaultConfig() Config {
	return Config{
		ContainerClass: DefaultContainerClass,
		ToastClass:     DefaultToastClass,
		AnimationClass: DefaultAnimationClass,
		Lifetime:       DefaultLifetime,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ContainerClass == "" {
		c.ContainerClass = d.ContainerClass
	}
	if c.ToastClass == "" {
		c.ToastClass = d.ToastClass
	}
	if c.AnimationClass == "" {
		c.AnimationClass = d.AnimationClass
	}
	if c.Lifetime <= 0 {
		c.Lifetime = d.Lifetime
	}
	return c
}

// Observer is told about toast lifecycle events.
type Observer interface {
	ToastShown(t Type)
	ToastRemoved()
	ContainerCreated()
	ToastDropped(reason string)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithConfig sets class names and lifetime. Zero fields keep their defaults.
func WithConfig(c Config) Option {
	return func(n *Notifier) {
		n.config = c.withDefaults()
	}
}

// WithLifetime sets how long toasts stay in the document.
func WithLifetime(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.config.Lifetime = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithObserver reports lifecycle events to o.
func WithObserver(o Observer) Option {
	return func(n *Notifier) {
		n.observer = o
	}
}
