package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/toast"
)

// maxNotifyBody caps the notify request body.
const maxNotifyBody = 64 << 10

// notifyRequest is the body of POST /_toast/sessions/{id}/notify.
type notifyRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// wantsPage reports whether r asks for an HTML page. Asset paths such as
// /favicon.ico and clients that do not accept HTML get no session.
func wantsPage(r *http.Request) (bool, int) {
	switch strings.ToLower(path.Ext(r.URL.Path)) {
	case "", ".html", ".htm":
	default:
		return false, http.StatusNotFound
	}
	accept := r.Header.Get("Accept")
	if accept != "" && !strings.Contains(accept, "text/html") && !strings.Contains(accept, "*/*") {
		return false, http.StatusNotAcceptable
	}
	return true, 0
}

// handlePage renders a fresh page for the request URL.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if ok, status := wantsPage(r); !ok {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.RenderPage(w, r)
}

// RenderPage renders the page template for r in a new live session.
// Toasts in rendered are written into the markup, the way a form handler
// reports a validation error without redirecting; query toasts from r are
// shown as well.
//
//	if !valid {
//	    srv.RenderPage(w, r, toast.Message{Text: "Invalid username or password!", Type: toast.TypeError})
//	    return
//	}
func (s *Server) RenderPage(w http.ResponseWriter, r *http.Request, rendered ...toast.Message) {
	doc, err := s.page.Document()
	if err != nil {
		s.logger.Error("page parse failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess, err := s.sessions.Create(doc)
	if err != nil {
		s.logger.Warn("session create failed", "error", err)
		if errors.HasCode(err, "T013") {
			w.Header().Set("Retry-After", "5")
		}
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	html, err := sess.Load(r.Context(), r.URL, rendered...)
	if err != nil {
		s.sessions.Close(sess.ID)
		s.logger.Error("page load failed", "session_id", sess.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, html)
	}
}

// handleLive upgrades to a WebSocket and attaches it to a session.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "session_id", id, "error", errors.New("T050").Wrap(err))
		return
	}

	if err := sess.Serve(r.Context(), conn); err != nil {
		s.logger.Warn("live connection ended", "session_id", id, "error", err)
	}
}

// handleNotify pushes a toast into a live page.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var req notifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNotifyBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("T051").Wrap(err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, errors.New("T051"))
		return
	}

	t := toast.Type(req.Type)
	if t == "" {
		t = toast.TypeInfo
	}

	if err := sess.Notify(r.Context(), req.Message, t); err != nil {
		if errors.HasCode(err, "T011") || errors.HasCode(err, "T012") {
			writeError(w, http.StatusGone, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"session": id, "type": string(t)})
}

// writeError writes err as a JSON body.
func writeError(w http.ResponseWriter, status int, err error) {
	var te *errors.ToastError
	if !stderrors.As(err, &te) {
		te = errors.Newf(errors.CategoryRuntime, "%s", err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, te.FormatJSON())
}
