package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kycreview/internal/utils"
	"kycreview/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxHandoffBytes = 8 << 20

// handoffForm is what the upload page posts when it navigates here. The
// list fields arrive as JSON text.
type handoffForm struct {
	ExtractedData string `form:"extractedData"`
	CustID        string `form:"cust_id"`
	UploadedFiles string `form:"uploadedFiles"`
}

func (s *Service) handleGetConfirmDetailsEmpty(w http.ResponseWriter, r *http.Request) {
	s.renderNoData(w, r, "", nil)
}

func (s *Service) handlePostConfirmDetailsHandoff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxHandoffBytes)
	if err := r.ParseMultipartForm(maxHandoffBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.logger.WithError(err).Error("failed to parse hand-off form")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	var f handoffForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode hand-off form")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	handoff := s.parseHandoffForm(f)
	files := uploadedFileNames(handoff.UploadedFiles)

	if len(handoff.ExtractedData) == 0 {
		s.renderNoData(w, r, handoff.CustID, files)
		return
	}

	draft, err := s.createDraft(ctx, userID, handoff)
	if err != nil {
		s.logger.WithError(err).Error("failed to create review draft")
		s.internalServerError(w)
		return
	}

	s.redirectToDraft(w, r, draft.ID, nil)
}

// handlePostReviewDraftAPI is the cross-origin variant of the hand-off. It
// answers with the page URL instead of redirecting.
func (s *Service) handlePostReviewDraftAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var handoff types.Handoff
	body := http.MaxBytesReader(w, r.Body, maxHandoffBytes)
	if err := json.NewDecoder(body).Decode(&handoff); err != nil {
		s.logger.WithError(err).Info("rejected malformed hand-off body")
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	handoff.CustID = strings.TrimSpace(handoff.CustID)

	if len(handoff.ExtractedData) == 0 {
		s.writeJSON(w, http.StatusOK, map[string]string{"url": "/confirm-details"})
		return
	}

	draft, err := s.createDraft(ctx, userID, handoff)
	if err != nil {
		s.logger.WithError(err).Error("failed to create review draft")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"id":  draft.ID,
		"url": confirmDetailsPath(draft.ID),
	})
}

// parseHandoffForm decodes the JSON fields of the form. Anything that does
// not parse is logged and treated as missing.
func (s *Service) parseHandoffForm(f handoffForm) types.Handoff {
	handoff := types.Handoff{CustID: strings.TrimSpace(f.CustID)}

	if strings.TrimSpace(f.ExtractedData) != "" {
		if err := json.Unmarshal([]byte(f.ExtractedData), &handoff.ExtractedData); err != nil {
			s.logger.WithError(err).Warn("ignoring malformed extractedData")
			handoff.ExtractedData = nil
		}
	}

	if strings.TrimSpace(f.UploadedFiles) != "" {
		if err := json.Unmarshal([]byte(f.UploadedFiles), &handoff.UploadedFiles); err != nil {
			s.logger.WithError(err).Warn("ignoring malformed uploadedFiles")
			handoff.UploadedFiles = nil
		}
	}

	return handoff
}

func uploadedFileNames(files []types.UploadedFile) []string {
	var names []string
	for _, f := range files {
		if name := strings.TrimSpace(f.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (s *Service) createDraft(ctx context.Context, userID string, handoff types.Handoff) (*types.ReviewDraft, error) {
	draft := &types.ReviewDraft{
		ID:            utils.NanoID(),
		UserID:        userID,
		CustID:        utils.StringPtrOrNil(handoff.CustID),
		UploadedFiles: uploadedFileNames(handoff.UploadedFiles),
		Documents:     handoff.ExtractedData.Clone(),
	}

	if err := s.drafts.CreateDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	s.metrics.IncrementDraftsCreated()

	s.logger.WithFields(logrus.Fields{
		"draft_id":  draft.ID,
		"user_id":   userID,
		"cust_id":   handoff.CustID,
		"documents": len(draft.Documents),
	}).Info("review draft created")

	return draft, nil
}

func (s *Service) renderNoData(w http.ResponseWriter, r *http.Request, custID string, files []string) {
	data := &types.ConfirmDetailsPageData{
		BasePageData:  types.BasePageData{Title: "Confirm Your KYC Details"},
		CustID:        custID,
		UploadedFiles: files,
		NoData:        true,
	}

	if err := s.renderTemplate(w, r, "page.confirm_details", data); err != nil {
		s.logger.WithError(err).Error("failed to render confirm details page")
		s.internalServerError(w)
		return
	}
}
