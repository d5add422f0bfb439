package server

import (
	"net/http"
	"net/url"

	"github.com/vango-dev/toastd/pkg/bootstrap"
)

// RedirectURL returns target with its msg and error query values replaced.
// Empty values are removed. Other query values and the fragment are kept.
func RedirectURL(target, msg, errMsg string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, value := range map[string]string{
		bootstrap.KeyMessage: msg,
		bootstrap.KeyError:   errMsg,
	} {
		if value == "" {
			q.Del(key)
		} else {
			q.Set(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Redirect answers a form post with 303 See Other so the next page shows
// msg as a success toast and errMsg as an error toast.
//
//	server.Redirect(w, r, "/home", "User deleted successfully", "")
func Redirect(w http.ResponseWriter, r *http.Request, target, msg, errMsg string) {
	location, err := RedirectURL(target, msg, errMsg)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
