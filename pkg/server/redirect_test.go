package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/pkg/bootstrap"
	"github.com/vango-dev/toastd/pkg/toast"
)

func TestRedirectURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		msg    string
		errMsg string
		want   string
	}{
		{"message", "/home", "User deleted successfully", "", "/home?msg=User+deleted+successfully"},
		{"error", "/", "", "Invalid OTP", "/?error=Invalid+OTP"},
		{"both", "/", "a", "b", "/?error=b&msg=a"},
		{"escapes separators", "/", "a&b=c;d", "", "/?msg=a%26b%3Dc%3Bd"},
		{"keeps other values", "/users?page=2", "Saved", "", "/users?msg=Saved&page=2"},
		{"replaces stale message", "/home?msg=old&error=old", "new", "", "/home?msg=new"},
		{"keeps fragment", "/home#list", "Saved", "", "/home?msg=Saved#list"},
		{"nothing to show", "/home", "", "", "/home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RedirectURL(tt.target, tt.msg, tt.errMsg)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("RedirectURL() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := RedirectURL("http://[::1", "x", ""); err == nil {
		t.Error("invalid target should fail")
	}
}

func TestRedirectRoundTrip(t *testing.T) {
	msg := "Saved; 100% & done"
	location, err := RedirectURL("/home", msg, "")
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(location)
	if got := bootstrap.ReadParams(u).Message; got != msg {
		t.Errorf("message after redirect = %q, want %q", got, msg)
	}
}

// newFormServer mounts handlers shaped like a login form: bad credentials
// re-render the page with an error toast, good ones redirect with a message.
func newFormServer(t *testing.T) *Server {
	t.Helper()
	var srv *Server
	srv = newTestServer(t, nil, WithRoutes(func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.FormValue("password") != "secret" {
				srv.RenderPage(w, r, toast.Message{Text: "Invalid username or password!", Type: toast.TypeError})
				return
			}
			Redirect(w, r, "/home", "User logged in successfully", "")
		})
	}))
	return srv
}

func postForm(srv http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestFormRedirect(t *testing.T) {
	srv := newFormServer(t)

	rec := postForm(srv, "/login", url.Values{"password": {"secret"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	location := rec.Header().Get("Location")
	if location != "/home?msg=User+logged+in+successfully" {
		t.Fatalf("Location = %q", location)
	}

	body := get(t, srv, location).Body.String()
	if !strings.Contains(body, `<i class="fas fa-check-circle"></i> User logged in successfully`) {
		t.Errorf("redirect target should show the message:\n%s", body)
	}
}

func TestRenderPageWithErrorToast(t *testing.T) {
	srv := newFormServer(t)

	rec := postForm(srv, "/login", url.Values{"password": {"wrong"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if got := strings.Count(body, `class="toast alert-error fade-slide"`); got != 1 {
		t.Errorf("error toasts = %d, want 1\n%s", got, body)
	}
	if !strings.Contains(body, `<i class="fas fa-exclamation-triangle"></i> Invalid username or password!`) {
		t.Errorf("error toast content missing:\n%s", body)
	}

	sess, err := srv.Sessions().Get(sessionID(t, body))
	if err != nil {
		t.Fatal(err)
	}
	// The rendered toast is removed on the same schedule as any toast in
	// the markup: exactly one removal is pending.
	if got := sess.Pending(); got != 1 {
		t.Errorf("pending removals = %d, want 1", got)
	}
}

func TestRenderPageCombinesQueryToasts(t *testing.T) {
	srv := newFormServer(t)

	rec := postForm(srv, "/login?msg=Welcome+back", url.Values{"password": {"wrong"}})
	body := rec.Body.String()
	rendered := strings.Index(body, `class="toast alert-error`)
	query := strings.Index(body, `class="toast alert-success`)
	if rendered < 0 || query < 0 {
		t.Fatalf("missing toasts:\n%s", body)
	}
	if rendered > query {
		t.Error("rendered toast belongs to the markup and should come first")
	}
}

func TestAssetPathsGetNoSession(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, target := range []string{"/favicon.ico", "/robots.txt", "/static/app.js", "/img/logo.PNG"} {
		rec := get(t, srv, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", target, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("JSON-only request = %d, want 406", rec.Code)
	}

	if n := srv.Sessions().Count(); n != 0 {
		t.Fatalf("sessions = %d, want 0", n)
	}

	for _, target := range []string{"/", "/users", "/about.html"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", target, rec.Code)
		}
	}
	if n := srv.Sessions().Count(); n != 3 {
		t.Errorf("sessions = %d, want 3", n)
	}
}

func TestSessionLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Live.MaxSessions = 2 })

	for i := 0; i < 2; i++ {
		if rec := get(t, srv, "/"); rec.Code != http.StatusOK {
			t.Fatalf("page %d status = %d", i, rec.Code)
		}
	}

	rec := get(t, srv, "/?msg=Saved")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status over the limit = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After should be set when the limit is reached")
	}
	if n := srv.Sessions().Count(); n != 2 {
		t.Errorf("sessions = %d, want 2", n)
	}
}
