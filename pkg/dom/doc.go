// Package dom provides the server-side document model toastd mutates.
//
// A Document mirrors the page a browser would hold: an <html> root with
// <head> and <body>, a location, and a one-shot "content loaded" event.
// All mutation goes through AppendChild and Remove so that registered
// observers see every InsertNode and RemoveNode on the connected tree;
// the live transport turns those mutations into patches for the browser.
//
// # Building Nodes
//
// Nodes can be built with variadic factory functions:
//
//	Div(Class("toast", "alert-success"),
//	    I(Class("fas", "fa-check-circle")),
//	    " Saved",
//	)
//
// or parsed from markup with Parse and (*Node).SetInnerHTML.
//
// # Selectors
//
// QuerySelector and QuerySelectorAll accept simple compound selectors:
// "div", ".toast", "#main", "div.toast.fade-slide" and "*". Combinators are
// not supported.
//
// # Hydration IDs
//
// Every element receives an HID ("h1", "h2", ...) when it becomes part of a
// document. HIDs are never reused within a document and let the browser
// address nodes the server removes.
//
// A Document is not safe for concurrent use; callers serialize access,
// normally by running everything on one loop.Loop.
package dom
