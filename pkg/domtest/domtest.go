// Package domtest provides a test harness for pages that show toasts.
//
// A Harness bundles a document, a virtual scheduler, and a notifier so
// tests can load a page, step simulated time, and assert on the result:
//
//	func TestSavedFlash(t *testing.T) {
//	    h := domtest.New(t).WithURL("/?msg=Saved").Load()
//	    domtest.ExpectToasts(t, h, 1)
//	    h.Advance(3 * time.Second)
//	    domtest.ExpectToasts(t, h, 0)
//	}
package domtest

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/toastd/pkg/bootstrap"
	"github.com/vango-dev/toastd/pkg/dom"
	"github.com/vango-dev/toastd/pkg/loop"
	"github.com/vango-dev/toastd/pkg/render"
	"github.com/vango-dev/toastd/pkg/toast"
)

// Builder allows fluent construction of a Harness.
type Builder struct {
	t        testing.TB
	markup   string
	location string
	opts     []toast.Option
}

// New creates a builder for a page with an empty body.
func New(t testing.TB) *Builder {
	return &Builder{t: t}
}

// WithMarkup sets the page markup.
//
//	h := domtest.New(t).WithMarkup(`<body><div class="toast">old</div></body>`).Build()
func (b *Builder) WithMarkup(markup string) *Builder {
	b.markup = markup
	return b
}

// WithURL sets the document location.
func (b *Builder) WithURL(rawURL string) *Builder {
	b.location = rawURL
	return b
}

// WithOptions passes options to the notifier.
func (b *Builder) WithOptions(opts ...toast.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build creates the harness without firing the content-loaded event.
func (b *Builder) Build() *Harness {
	b.t.Helper()

	doc := dom.NewDocument()
	if b.markup != "" {
		var err error
		doc, err = dom.ParseString(b.markup)
		if err != nil {
			b.t.Fatalf("domtest: parse markup: %v", err)
		}
	}
	if b.location != "" {
		u, err := url.Parse(b.location)
		if err != nil {
			b.t.Fatalf("domtest: parse url %q: %v", b.location, err)
		}
		doc.SetLocation(u)
	}

	clock := loop.NewVirtual()
	h := &Harness{
		Doc:      doc,
		Clock:    clock,
		Notifier: toast.New(doc, clock, b.opts...),
	}
	h.Bootstrapper = bootstrap.New(doc, h.Notifier)
	h.Bootstrapper.Attach()
	return h
}

// Load builds the harness and fires the content-loaded event.
func (b *Builder) Load() *Harness {
	b.t.Helper()
	h := b.Build()
	h.Doc.FireContentLoaded(context.Background())
	return h
}

// Harness is a loaded or loadable page on virtual time.
type Harness struct {
	Doc          *dom.Document
	Clock        *loop.Virtual
	Notifier     *toast.Notifier
	Bootstrapper *bootstrap.Bootstrapper
}

// Advance moves simulated time forward.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
}

// Toasts returns the toast elements currently in the document.
func (h *Harness) Toasts() []*dom.Node {
	return h.Doc.QuerySelectorAll("." + h.Notifier.Config().ToastClass)
}

// ToastsOfType returns the toasts carrying the "alert-<type>" class.
func (h *Harness) ToastsOfType(t toast.Type) []*dom.Node {
	var out []*dom.Node
	for _, n := range h.Toasts() {
		if n.HasClass(t.Modifier()) {
			out = append(out, n)
		}
	}
	return out
}

// Containers returns every toast container in the document.
func (h *Harness) Containers() []*dom.Node {
	return h.Doc.QuerySelectorAll("." + h.Notifier.Config().ContainerClass)
}

// HTML renders the whole document.
func (h *Harness) HTML() string {
	html, err := render.NewRenderer(render.RendererConfig{}).RenderDocument(h.Doc)
	if err != nil {
		return ""
	}
	return html
}

// ExpectToasts asserts the number of toasts in the document.
func ExpectToasts(t testing.TB, h *Harness, n int) {
	t.Helper()
	if got := len(h.Toasts()); got != n {
		t.Errorf("expected %d toasts, got %d:\n%s", n, got, truncate(h.HTML(), 500))
	}
}

// ExpectContains asserts that the rendered document contains expected.
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered document does not contain unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
