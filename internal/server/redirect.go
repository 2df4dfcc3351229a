package server

import (
	"fmt"
	"net/http"
	"net/url"
)

func (s *Service) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}

func confirmDetailsPath(draftID string) string {
	return "/confirm-details/" + url.PathEscape(draftID)
}

// redirectToDraft sends the browser back to the draft page, optionally with
// one of the dialog query flags.
func (s *Service) redirectToDraft(w http.ResponseWriter, r *http.Request, draftID string, query url.Values) {
	target := confirmDetailsPath(draftID)
	if len(query) > 0 {
		target = fmt.Sprintf("%s?%s", target, query.Encode())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
