package server

import (
	"net/http"
	"strings"

	"kycreview/pkg/types"
)

const missingValue = "—"

func (s *Service) handleGetUserDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	custID := strings.TrimSpace(r.PathValue("custID"))

	data := &types.UserDetailsPageData{
		BasePageData: types.BasePageData{Title: "User Details"},
		CustID:       custID,
	}

	profile, err := s.customers.Load(ctx, custID, userID)
	if err != nil {
		// The page only knows found or not found; the cause stays in the log.
		s.logger.WithError(err).WithField("cust_id", custID).Error("cannot fetch user details")
	} else {
		data.Found = true
		data.Documents = buildDocumentViews(profile.Documents)
		data.Links = profile.Links
	}

	if err := s.renderTemplate(w, r, "page.user_details", data); err != nil {
		s.logger.WithError(err).Error("failed to render user details page")
		s.internalServerError(w)
		return
	}
}

func buildDocumentViews(docs types.Documents) []types.DocumentView {
	views := make([]types.DocumentView, 0, len(docs))
	for _, doc := range docs {
		view := types.DocumentView{Header: doc.DocumentType()}
		if view.Header == "" {
			view.Header = "Document"
		}

		for _, field := range doc {
			if field.Key == types.DocumentTypeKey {
				continue
			}
			row := types.DetailRow{Label: fieldLabel(field.Key), Value: missingValue}
			if field.Value != nil {
				row.Value = *field.Value
			}
			view.Rows = append(view.Rows, row)
		}

		views = append(views, view)
	}
	return views
}
