package server

import (
	"net/http"
	"net/url"
	"strings"

	"kycreview/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "KYC Review"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		CustID:       r.URL.Query().Get("cust_id"),
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleGetCustomerLookup turns the home page search form into a details URL.
func (s *Service) handleGetCustomerLookup(w http.ResponseWriter, r *http.Request) {
	custID := strings.TrimSpace(r.URL.Query().Get("cust_id"))
	if !required(custID) {
		s.redirectWithError(w, r, "Enter a customer ID.")
		return
	}

	http.Redirect(w, r, "/customers/"+url.PathEscape(custID), http.StatusSeeOther)
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
