// Package live keeps a rendered page alive on the server so its toasts can
// be mirrored to the browser.
//
// Each page view gets a Session: the page's document, the event loop it
// runs on, and the notifier that owns its toasts. After the initial
// render, every element inserted into or removed from the document is
// turned into a Frame and written to the browser over a WebSocket. The
// embedded client script applies the frames, so a toast removed by its
// server-side timer disappears from the browser too.
//
// # Lifecycle
//
//	m := live.NewManager(live.DefaultConfig())
//	s, _ := m.Create(doc)
//	html, _ := s.Load(ctx, r.URL) // bootstrap runs, page is rendered
//	...
//	s.Serve(conn)                 // blocks while the browser is connected
//
// Sessions without a connection and without pending removals are reaped
// after Config.IdleTimeout.
//
// # Frames
//
// Frames are JSON text messages:
//
//	{"op":"insert","parent":"h3","hid":"h9","html":"<div ...>"}
//	{"op":"remove","hid":"h9"}
//	{"op":"sync","hids":["h9"]}
//	{"op":"ping"}
//
// sync is sent first on every connection and lists the toasts still in
// the document, so the browser can drop any it rendered that the server
// has already removed.
package live
