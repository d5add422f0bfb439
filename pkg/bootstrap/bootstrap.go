// Package bootstrap runs the page-load step that turns query parameters
// into toasts.
//
// When a document finishes loading, the Bootstrapper reads two keys from
// its URL: "msg" becomes a success toast and "error" becomes an error
// toast. Both may be present. Toasts that were already in the markup
// (rendered by whoever produced the page) are scheduled for removal with
// the same lifetime as new ones.
//
//	doc.SetLocation(r.URL)
//	bootstrap.New(doc, notifier).Attach()
//	doc.FireContentLoaded(ctx)
package bootstrap

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/dom"
	"github.com/vango-dev/toastd/pkg/toast"
)

// Query keys read from the page URL.
const (
	KeyMessage = "msg"
	KeyError   = "error"
)

const tracerName = "github.com/vango-dev/toastd/pkg/bootstrap"

// Params are the notification values found in a query string.
type Params struct {
	Message string
	Error   string
}

// ReadParams extracts the msg and error values from a URL. Pairs are
// separated by "&" only, so ";" is an ordinary character. Pairs that fail
// to unescape are skipped; the rest are still used. The first occurrence of
// a key wins and empty values count as absent. A nil URL has no parameters.
func ReadParams(u *url.URL) Params {
	var p Params
	if u == nil {
		return p
	}
	seen := map[string]bool{}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		if key != KeyMessage && key != KeyError || seen[key] {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		seen[key] = true
		if key == KeyMessage {
			p.Message = value
		} else {
			p.Error = value
		}
	}
	return p
}

// Bootstrapper performs the page-load notification step for one document.
type Bootstrapper struct {
	doc      *dom.Document
	notifier *toast.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bootstrapper) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTracer sets the tracer used for the bootstrap span.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Bootstrapper) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// New creates a Bootstrapper for doc that displays toasts through notifier.
func New(doc *dom.Document, notifier *toast.Notifier, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		doc:      doc,
		notifier: notifier,
		logger:   slog.Default().With("component", "bootstrap"),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach registers Run on the document's content-loaded event.
func (b *Bootstrapper) Attach() {
	b.doc.OnContentLoaded(b.Run)
}

// Run shows the toasts requested by the document URL and schedules
// removal of the toasts that were present in the markup before it ran.
func (b *Bootstrapper) Run(ctx context.Context) {
	_, span := b.tracer.Start(ctx, "toast.bootstrap")
	defer span.End()

	// Snapshot first so toasts created below are not scheduled twice.
	existing := b.doc.QuerySelectorAll("." + b.notifier.Config().ToastClass)

	loc := b.doc.Location()
	if loc == nil {
		b.logger.Debug("bootstrap without location", "error", errors.New("T002"))
	}
	params := ReadParams(loc)

	if params.Message != "" {
		b.notifier.Notify(params.Message, toast.TypeSuccess)
	}
	if params.Error != "" {
		b.notifier.Notify(params.Error, toast.TypeError)
	}

	for _, el := range existing {
		b.notifier.ScheduleRemoval(el)
	}

	span.SetAttributes(
		attribute.Bool("toast.msg", params.Message != ""),
		attribute.Bool("toast.error", params.Error != ""),
		attribute.Int("toast.preexisting", len(existing)),
	)
	b.logger.Debug("bootstrap complete",
		"msg", params.Message != "",
		"error", params.Error != "",
		"preexisting", len(existing))
}
