package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/vango-dev/toastd/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// HydrationIDs writes a data-hid attribute for every element with an HID.
	HydrationIDs bool

	// HIDFilter limits data-hid to the elements it accepts. Nil accepts
	// every element.
	HIDFilter func(*dom.Node) bool

	// Doctype is written before the root by RenderDocument.
	// Defaults to "<!DOCTYPE html>".
	Doctype string
}

// Renderer serializes dom trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Doctype == "" {
		config.Doctype = "<!DOCTYPE html>"
	}
	return &Renderer{config: config}
}

// RenderDocument renders a complete document, doctype included.
func (r *Renderer) RenderDocument(doc *dom.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.WriteDocument(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteDocument streams a complete document to w.
func (r *Renderer) WriteDocument(w io.Writer, doc *dom.Document) error {
	if _, err := io.WriteString(w, r.config.Doctype+"\n"); err != nil {
		return err
	}
	return r.RenderToWriter(w, doc.Root())
}

// RenderToString renders a node and its subtree to a string.
func (r *Renderer) RenderToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Node) error {
	return r.renderNode(w, node, false)
}

// InnerHTML renders only the children of node.
func (r *Renderer) InnerHTML(node *dom.Node) (string, error) {
	if node == nil {
		return "", nil
	}
	var buf bytes.Buffer
	raw := rawTextElements[node.Tag]
	for _, c := range node.Children {
		if err := r.renderNode(&buf, c, raw); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// InnerHTML renders the children of node without hydration IDs.
func InnerHTML(node *dom.Node) string {
	s, _ := NewRenderer(RendererConfig{}).InnerHTML(node)
	return s
}

// renderNode dispatches rendering based on node kind.
// rawText is set for the children of <script> and <style>.
func (r *Renderer) renderNode(w io.Writer, node *dom.Node, rawText bool) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case dom.KindElement:
		return r.renderElement(w, node)
	case dom.KindText:
		text := node.Text
		if !rawText {
			text = escapeHTML(text)
		}
		_, err := io.WriteString(w, text)
		return err
	case dom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *dom.Node) error {
	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if dom.IsVoidElement(node.Tag) {
		return nil
	}

	raw := rawTextElements[node.Tag]
	for _, child := range node.Children {
		if err := r.renderNode(w, child, raw); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</"+node.Tag+">")
	return err
}

// renderAttributes renders all attributes for an element.
func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	keys := make([]string, 0, len(node.Attrs))
	for key := range node.Attrs {
		if key == "data-hid" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Attrs[key]
		if isBooleanAttr(key) && (value == "" || value == key) {
			if _, err := fmt.Fprintf(w, " %s", key); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(value)); err != nil {
			return err
		}
	}

	if r.hydrated(node) {
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, escapeAttr(node.HID)); err != nil {
			return err
		}
	}
	return nil
}

// hydrated reports whether node gets a data-hid attribute.
func (r *Renderer) hydrated(node *dom.Node) bool {
	if !r.config.HydrationIDs || node.HID == "" {
		return false
	}
	return r.config.HIDFilter == nil || r.config.HIDFilter(node)
}
