// Package server is the toastd HTTP surface.
//
// Every page request gets its own live session: the page template is
// parsed, the msg/error query parameters become toasts, and the rendered
// HTML carries a small client script that keeps the browser in step with
// the session over a WebSocket.
//
// Routes:
//
//	GET  /*                             page with bootstrap toasts
//	GET  /_toast/live?session=<id>      WebSocket for live frames
//	POST /_toast/sessions/{id}/notify   push a toast into a live page
//	GET  /_toast/client.js              live client script
//	GET  /metrics                       Prometheus metrics (when enabled)
//
// Usage:
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx) // returns after ctx is cancelled and shutdown completes
package server
