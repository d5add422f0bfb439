package live

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/bootstrap"
	"github.com/vango-dev/toastd/pkg/dom"
	"github.com/vango-dev/toastd/pkg/loop"
	"github.com/vango-dev/toastd/pkg/render"
	"github.com/vango-dev/toastd/pkg/toast"
)

// Session is one live page view.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	doc      *dom.Document
	loop     *loop.Loop
	notifier *toast.Notifier
	renderer *render.Renderer
	config   Config
	logger   *slog.Logger
	recorder Recorder

	// mirroring is set once the page has been rendered. Only the loop
	// goroutine reads or writes it.
	mirroring bool

	outbox chan Frame

	mu      sync.Mutex
	conn    *connection
	carried []Frame

	lastActive atomic.Int64
	closed     atomic.Bool
	done       chan struct{}
}

func newSession(doc *dom.Document, config Config, base *slog.Logger, observer toast.Observer, recorder Recorder) *Session {
	id := uuid.NewString()
	base = base.With("session_id", id)
	logger := base.With("component", "live")

	l := loop.New(loop.Config{
		QueueSize: config.QueueSize,
		Logger:    base.With("component", "loop"),
	})

	notifierOpts := []toast.Option{
		toast.WithConfig(config.Toast),
		toast.WithLogger(base.With("component", "toast")),
	}
	if observer != nil {
		notifierOpts = append(notifierOpts, toast.WithObserver(observer))
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		doc:       doc,
		loop:      l,
		notifier:  toast.New(doc, l, notifierOpts...),
		config:    config,
		logger:    logger,
		recorder:  recorder,
		outbox:    make(chan Frame, config.OutboxSize),
		done:      make(chan struct{}),
	}
	s.renderer = render.NewRenderer(render.RendererConfig{
		HydrationIDs: true,
		HIDFilter:    s.addressable,
	})
	s.touch()

	bootstrap.New(doc, s.notifier, bootstrap.WithLogger(base.With("component", "bootstrap"))).Attach()
	doc.Observe(s.mirror)

	go l.Run(context.Background())
	return s
}

// Load runs the page-load step for u and returns the rendered page.
// Toasts in rendered are placed in the markup before the page loads, so
// they expire like any toast the template contained. Mutations made after
// this point are mirrored to the browser.
func (s *Session) Load(ctx context.Context, u *url.URL, rendered ...toast.Message) (string, error) {
	if s.closed.Load() {
		return "", errors.New("T011")
	}

	var (
		html      string
		renderErr error
	)
	err := s.loop.Do(ctx, func() {
		s.doc.SetLocation(u)
		for _, m := range rendered {
			if _, err := s.notifier.Render(m); err != nil {
				s.logger.Warn("rendered toast dropped", "type", string(m.Type), "error", err)
			}
		}
		s.injectClient()
		s.doc.FireContentLoaded(ctx)
		html, renderErr = s.renderer.RenderDocument(s.doc)
		s.mirroring = true
	})
	if err != nil {
		return "", err
	}
	if renderErr != nil {
		return "", renderErr
	}

	s.touch()
	return html, nil
}

// injectClient appends the client script tag to <body>.
func (s *Session) injectClient() {
	if s.config.ClientScript == "" {
		return
	}
	body := s.doc.Body()
	if body == nil {
		s.logger.Debug("page has no body, live client not injected")
		return
	}
	script := s.doc.CreateElement("script")
	script.SetAttr("src", s.config.ClientScript)
	script.SetAttr("data-session", s.ID)
	script.SetAttr("data-live", s.config.LivePath)
	script.SetAttr("data-toast-class", s.notifier.Config().ToastClass)
	script.SetAttr("defer", "")
	body.AppendChild(script)
}

// Notify shows a toast on the page. It is safe to call from any goroutine.
func (s *Session) Notify(ctx context.Context, message string, t toast.Type) error {
	if s.closed.Load() {
		return errors.New("T011")
	}
	err := s.loop.Do(ctx, func() {
		s.notifier.Notify(message, t)
	})
	if err == nil {
		s.touch()
	}
	return err
}

// ToastHIDs returns the hydration IDs of the toasts currently in the page.
func (s *Session) ToastHIDs(ctx context.Context) ([]string, error) {
	var hids []string
	err := s.loop.Do(ctx, func() {
		hids = s.toastHIDs()
	})
	return hids, err
}

func (s *Session) toastHIDs() []string {
	nodes := s.doc.QuerySelectorAll("." + s.notifier.Config().ToastClass)
	hids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		hids = append(hids, n.HID)
	}
	return hids
}

// HTML renders the page as it is now.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var (
		html      string
		renderErr error
	)
	err := s.loop.Do(ctx, func() {
		html, renderErr = s.renderer.RenderDocument(s.doc)
	})
	if err != nil {
		return "", err
	}
	return html, renderErr
}

// addressable reports whether the browser needs to find n by HID: the
// body a new container is appended to, the container, and the toasts.
func (s *Session) addressable(n *dom.Node) bool {
	if n.Tag == "body" {
		return true
	}
	c := s.notifier.Config()
	return n.HasClass(c.ContainerClass) || n.HasClass(c.ToastClass)
}

// mirror turns document mutations into frames. Runs on the loop.
func (s *Session) mirror(m dom.Mutation) {
	if !s.mirroring || m.Node == nil || m.Node.Kind != dom.KindElement || !s.addressable(m.Node) {
		return
	}

	switch m.Op {
	case dom.PatchInsertNode:
		markup, err := s.renderer.RenderToString(m.Node)
		if err != nil {
			s.logger.Error("render inserted node", "hid", m.HID, "error", err)
			return
		}
		s.enqueue(Frame{Op: OpInsert, Parent: m.ParentID, HID: m.HID, HTML: markup})

	case dom.PatchRemoveNode:
		s.enqueue(Frame{Op: OpRemove, HID: m.HID})
	}
}

// enqueue buffers a frame for the writer. Frames that do not fit are
// dropped; the next connection's sync frame corrects removals.
func (s *Session) enqueue(f Frame) {
	select {
	case s.outbox <- f:
	default:
		s.logger.Warn("outbox full, dropping frame", "op", string(f.Op), "hid", f.HID)
	}
}

// Pending returns the number of removals that have not run yet.
func (s *Session) Pending() int {
	return s.loop.Pending()
}

// Connected reports whether a browser is attached.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// touch records activity.
func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last load, notification or message.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// idle reports whether the session can be reaped at now.
func (s *Session) idle(now time.Time, timeout time.Duration) bool {
	if s.Connected() || s.Pending() > 0 {
		return false
	}
	return now.Sub(s.LastActive()) > timeout
}

// Close stops the session's loop and drops its connection.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()
	if c != nil {
		c.close(true)
	}

	s.loop.Close()
	s.logger.Debug("session closed", "age", time.Since(s.CreatedAt))
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
