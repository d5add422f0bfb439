// Package render serializes dom trees to HTML.
//
// The renderer handles text and attribute escaping, void elements, boolean
// attributes, and raw-text elements (<script>, <style>). Attributes are
// written in sorted order so output is deterministic.
//
//	r := render.NewRenderer(render.RendererConfig{HydrationIDs: true})
//	html, err := r.RenderDocument(doc)
//
// With HydrationIDs enabled every element that carries an HID is written
// with a data-hid attribute, which the live client uses to find the node
// a server-side removal refers to.
//
// InnerHTML returns the markup of a node's children, mirroring the browser
// property of the same name.
package render
