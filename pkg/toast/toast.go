package toast

import (
	"log/slog"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/dom"
	"github.com/vango-dev/toastd/pkg/loop"
)

// Notifier displays toasts in a document. It must be used from the
// scheduler's thread, like any other code touching the document.
type Notifier struct {
	doc      *dom.Document
	sched    loop.Scheduler
	config   Config
	logger   *slog.Logger
	observer Observer
}

// New creates a Notifier for doc whose removals run on sched.
func New(doc *dom.Document, sched loop.Scheduler, opts ...Option) *Notifier {
	n := &Notifier{
		doc:    doc,
		sched:  sched,
		config: DefaultConfig(),
		logger: slog.Default().With("component", "toast"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Config returns the notifier's class names and lifetime.
func (n *Notifier) Config() Config {
	return n.config
}

// Notify displays a toast. It never fails from the caller's point of
// view: if no container can be found or created the toast is dropped and
// the reason is logged.
func (n *Notifier) Notify(message string, t Type) {
	if _, err := n.Show(message, t); err != nil {
		n.logger.Warn("toast dropped", "type", string(t), "error", err)
		if n.observer != nil {
			n.observer.ToastDropped(dropReason(err))
		}
	}
}

// dropReason names why Show failed, for the Observer.
func dropReason(err error) string {
	switch {
	case errors.HasCode(err, "T001"):
		return "container_unavailable"
	case errors.HasCode(err, "T003"):
		return "invalid_markup"
	default:
		return "other"
	}
}

// Show displays a toast and returns its element. The element is already
// attached to the container and its removal is scheduled.
func (n *Notifier) Show(message string, t Type) (*dom.Node, error) {
	el, err := n.build(message, t)
	if err != nil {
		return nil, err
	}
	n.ScheduleRemoval(el)
	return el, nil
}

// Render appends a toast without scheduling its removal, as if the page
// template had contained it. The bootstrapper schedules it with the other
// toasts found in the markup.
func (n *Notifier) Render(m Message) (*dom.Node, error) {
	return n.build(m.Text, m.Type)
}

func (n *Notifier) build(message string, t Type) (*dom.Node, error) {
	container, err := n.Container()
	if err != nil {
		return nil, err
	}

	el := n.doc.CreateElement("div")
	el.SetClass(n.config.ToastClass, t.Modifier(), n.config.AnimationClass)
	if err := el.SetInnerHTML(Content(message, t)); err != nil {
		return nil, err
	}
	container.AppendChild(el)

	n.logger.Debug("toast shown", "type", string(t), "hid", el.HID)
	if n.observer != nil {
		n.observer.ToastShown(t)
	}
	return el, nil
}

// Container returns the page's toast container, creating it under <body>
// when none exists. The returned element is always the one attached to
// the document.
func (n *Notifier) Container() (*dom.Node, error) {
	if c := n.doc.QuerySelector("." + n.config.ContainerClass); c != nil {
		return c, nil
	}

	body := n.doc.Body()
	if body == nil {
		return nil, errors.New("T001").
			WithSuggestion("Include a <body> element in the page template")
	}

	container := n.doc.CreateElement("div")
	container.SetClass(n.config.ContainerClass)
	body.AppendChild(container)

	n.logger.Debug("toast container created", "hid", container.HID)
	if n.observer != nil {
		n.observer.ContainerCreated()
	}
	return container, nil
}

// ScheduleRemoval removes node from its parent once the lifetime elapses.
// Nothing happens if the node is already gone by then.
func (n *Notifier) ScheduleRemoval(node *dom.Node) {
	n.sched.AfterFunc(n.config.Lifetime, func() {
		if node.Remove() && n.observer != nil {
			n.observer.ToastRemoved()
		}
	})
}

// Success shows a success toast.
//
//	n.Success("Changes saved!")
func (n *Notifier) Success(message string) {
	n.Notify(message, TypeSuccess)
}

// Error shows an error toast.
//
//	n.Error("Failed to delete item")
func (n *Notifier) Error(message string) {
	n.Notify(message, TypeError)
}

// Warning shows a warning toast.
func (n *Notifier) Warning(message string) {
	n.Notify(message, TypeWarning)
}

// Info shows an info toast.
func (n *Notifier) Info(message string) {
	n.Notify(message, TypeInfo)
}
