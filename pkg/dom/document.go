package dom

import (
	"context"
	"net/url"
	"strconv"
)

// Document is a page's node tree plus its location and lifecycle state.
type Document struct {
	root       *Node
	location   *url.URL
	hidCounter uint32
	observers  []func(Mutation)

	loadedListeners []func(context.Context)
	loaded          bool
}

// NewDocument creates a document with an empty <html><head></head><body></body></html> tree.
func NewDocument() *Document {
	d := &Document{}
	root := &Node{Kind: KindElement, Tag: "html", Attrs: make(Attrs)}
	d.setRoot(root)
	root.AppendChild(d.CreateElement("head"))
	root.AppendChild(d.CreateElement("body"))
	return d
}

func (d *Document) setRoot(root *Node) {
	d.root = root
	d.adopt(root)
}

// Root returns the <html> element.
func (d *Document) Root() *Node {
	return d.root
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *Node {
	return d.childElement("head")
}

// Body returns the <body> element, or nil when the document has none attached.
func (d *Document) Body() *Node {
	return d.childElement("body")
}

func (d *Document) childElement(tag string) *Node {
	if d.root == nil {
		return nil
	}
	for _, c := range d.root.Children {
		if c.Kind == KindElement && c.Tag == tag {
			return c
		}
	}
	return nil
}

// Location returns the URL the document was loaded from, or nil.
func (d *Document) Location() *url.URL {
	return d.location
}

// SetLocation sets the URL the document was loaded from.
func (d *Document) SetLocation(u *url.URL) {
	d.location = u
}

// CreateElement returns a detached element owned by the document.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: make(Attrs), doc: d}
}

// CreateTextNode returns a detached text node owned by the document.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{Kind: KindText, Text: text, doc: d}
}

// QuerySelector returns the first element in the document matching selector.
func (d *Document) QuerySelector(selector string) *Node {
	if d.root == nil {
		return nil
	}
	if sel, err := ParseSelector(selector); err == nil && sel.Matches(d.root) {
		return d.root
	}
	return d.root.QuerySelector(selector)
}

// QuerySelectorAll returns every element in the document matching selector.
func (d *Document) QuerySelectorAll(selector string) []*Node {
	if d.root == nil {
		return nil
	}
	var found []*Node
	if sel, err := ParseSelector(selector); err == nil && sel.Matches(d.root) {
		found = append(found, d.root)
	}
	return append(found, d.root.QuerySelectorAll(selector)...)
}

// GetElementByHID returns the connected element with the given hydration ID.
func (d *Document) GetElementByHID(hid string) *Node {
	if d.root == nil || hid == "" {
		return nil
	}
	if d.root.HID == hid {
		return d.root
	}
	var found *Node
	d.root.walk(func(c *Node) bool {
		if c.HID == hid {
			found = c
			return false
		}
		return true
	})
	return found
}

// Observe registers fn to receive every mutation of the connected tree.
func (d *Document) Observe(fn func(Mutation)) {
	d.observers = append(d.observers, fn)
}

func (d *Document) notify(m Mutation) {
	for _, fn := range d.observers {
		fn(m)
	}
}

// OnContentLoaded registers fn to run when the document finishes loading.
// Listeners registered after the event fired never run.
func (d *Document) OnContentLoaded(fn func(ctx context.Context)) {
	if d.loaded {
		return
	}
	d.loadedListeners = append(d.loadedListeners, fn)
}

// FireContentLoaded runs the content-loaded listeners in registration order.
// It fires at most once per document and reports whether this call fired it.
func (d *Document) FireContentLoaded(ctx context.Context) bool {
	if d.loaded {
		return false
	}
	d.loaded = true
	listeners := d.loadedListeners
	d.loadedListeners = nil
	for _, fn := range listeners {
		fn(ctx)
	}
	return true
}

// Loaded reports whether the content-loaded event has fired.
func (d *Document) Loaded() bool {
	return d.loaded
}

// adopt sets the owner document of n and its subtree and assigns HIDs to
// elements that do not have one yet.
func (d *Document) adopt(n *Node) {
	d.adoptOne(n)
	n.walk(func(c *Node) bool {
		d.adoptOne(c)
		return true
	})
}

func (d *Document) adoptOne(n *Node) {
	if n.doc != d {
		if n.doc != nil {
			n.HID = ""
		}
		n.doc = d
	}
	if n.Kind == KindElement && n.HID == "" {
		n.HID = d.nextHID()
	}
}

func (d *Document) nextHID() string {
	d.hidCounter++
	return "h" + strconv.FormatUint(uint64(d.hidCounter), 10)
}
