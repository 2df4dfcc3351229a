package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"kycreview/internal/backend"
	"kycreview/internal/review"
	"kycreview/internal/utils"
	"kycreview/pkg/types"

	"github.com/sirupsen/logrus"
)

// confirmForm mirrors the inputs of the confirm page. Every action button
// submits the whole form so pending edits are never lost.
type confirmForm struct {
	Docs      []confirmDocForm `form:"docs"`
	NewKey    string           `form:"new_key"`
	NewValue  string           `form:"new_value"`
	DeleteKey string           `form:"delete_key"`
}

type confirmDocForm struct {
	Fields []confirmFieldForm `form:"fields"`
}

type confirmFieldForm struct {
	Key   string `form:"key"`
	Value string `form:"value"`
}

func (f *confirmForm) edits() []review.Edit {
	var edits []review.Edit
	for i, doc := range f.Docs {
		for _, field := range doc.Fields {
			if field.Key == "" {
				continue
			}
			edits = append(edits, review.Edit{DocIndex: i, Key: field.Key, Value: field.Value})
		}
	}
	return edits
}

func (s *Service) handleGetConfirmDetails(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	data := buildConfirmPage(draft)

	query := r.URL.Query()
	if data.Result == nil {
		if docIndex, err := strconv.Atoi(query.Get("add")); err == nil && docIndex >= 0 && docIndex < len(draft.Documents) {
			data.AddField = &types.AddFieldDialog{
				DocIndex:      docIndex,
				DocumentTitle: documentTitle(draft.Documents[docIndex], docIndex),
			}
		} else if query.Get("conflict") == "1" {
			data.ConflictOpen = true
		}
	}

	data.DefaultAction = defaultFormAction(data)

	if err := s.renderTemplate(w, r, "page.confirm_details", data); err != nil {
		s.logger.WithError(err).Error("failed to render confirm details page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostOpenAddField(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	docIndex, ok := s.documentIndex(w, r, draft)
	if !ok {
		return
	}

	if _, ok := s.applyPostedEdits(w, r, draft); !ok {
		return
	}

	if err := s.drafts.UpdateDraft(r.Context(), draft); err != nil {
		s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to update draft")
		s.internalServerError(w)
		return
	}

	s.redirectToDraft(w, r, draft.ID, url.Values{"add": []string{strconv.Itoa(docIndex)}})
}

func (s *Service) handlePostAddField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	docIndex, ok := s.documentIndex(w, r, draft)
	if !ok {
		return
	}

	f, ok := s.applyPostedEdits(w, r, draft)
	if !ok {
		return
	}

	docs, added, err := review.AddField(draft.Documents, docIndex, f.NewKey, f.NewValue)
	if err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}
	draft.Documents = docs

	if err := s.drafts.UpdateDraft(ctx, draft); err != nil {
		s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to update draft")
		s.internalServerError(w)
		return
	}

	if !added {
		// Blank key: keep the dialog open with what was typed.
		data := buildConfirmPage(draft)
		data.AddField = &types.AddFieldDialog{
			DocIndex:      docIndex,
			DocumentTitle: documentTitle(draft.Documents[docIndex], docIndex),
			Key:           f.NewKey,
			Value:         f.NewValue,
		}
		data.DefaultAction = defaultFormAction(data)

		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := s.renderTemplate(w, r, "page.confirm_details", data); err != nil {
			s.logger.WithError(err).Error("failed to render confirm details page")
		}
		return
	}

	s.redirectToDraft(w, r, draft.ID, nil)
}

func (s *Service) handlePostDeleteField(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	docIndex, ok := s.documentIndex(w, r, draft)
	if !ok {
		return
	}

	fieldIndex, err := strconv.Atoi(r.PathValue("field"))
	if err != nil {
		http.Error(w, "invalid field", http.StatusBadRequest)
		return
	}

	f, ok := s.applyPostedEdits(w, r, draft)
	if !ok {
		return
	}

	// The posted key pins the row the button was rendered for. A page that
	// went stale under another tab leaves the draft alone.
	doc := draft.Documents[docIndex]
	if fieldIndex >= 0 && fieldIndex < len(doc) && doc[fieldIndex].Key == f.DeleteKey {
		docs, err := review.DeleteField(draft.Documents, docIndex, doc[fieldIndex].Key)
		if err != nil {
			http.Error(w, "invalid document", http.StatusBadRequest)
			return
		}
		draft.Documents = docs
	}

	if err := s.drafts.UpdateDraft(r.Context(), draft); err != nil {
		s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to update draft")
		s.internalServerError(w)
		return
	}

	s.redirectToDraft(w, r, draft.ID, nil)
}

// handlePostConfirm saves straight away unless the documents disagree on
// the customer's name, in which case the warning dialog opens first.
func (s *Service) handlePostConfirm(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	if s.resultPending(w, r, draft) {
		return
	}

	if _, ok := s.applyPostedEdits(w, r, draft); !ok {
		return
	}

	if review.HasNameConflict(draft.Documents) {
		if err := s.drafts.UpdateDraft(r.Context(), draft); err != nil {
			s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to update draft")
			s.internalServerError(w)
			return
		}

		s.metrics.NameConflict("shown")
		s.redirectToDraft(w, r, draft.ID, url.Values{"conflict": []string{"1"}})
		return
	}

	s.saveDraft(w, r, draft)
}

func (s *Service) handlePostSaveAnyway(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	if s.resultPending(w, r, draft) {
		return
	}

	if _, ok := s.applyPostedEdits(w, r, draft); !ok {
		return
	}

	if review.HasNameConflict(draft.Documents) {
		s.metrics.NameConflict("continued")
		s.logger.WithFields(logrus.Fields{
			"draft_id": draft.ID,
			"user_id":  draft.UserID,
			"cust_id":  draft.CustomerID(),
		}).Warn("saving documents with conflicting names")
	}

	s.saveDraft(w, r, draft)
}

func (s *Service) handlePostDismissResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draft, ok := s.loadDraft(w, r)
	if !ok {
		return
	}

	result, navigate := review.Dismiss(draft.Result)
	if navigate {
		if err := s.drafts.DeleteDraft(ctx, draft.ID); err != nil {
			s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to delete saved draft")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	draft.Result = result
	if err := s.drafts.UpdateDraft(ctx, draft); err != nil {
		s.logger.WithError(err).WithField("draft_id", draft.ID).Error("failed to update draft")
		s.internalServerError(w)
		return
	}

	s.redirectToDraft(w, r, draft.ID, nil)
}

// resultPending sends the user back to the open result dialog. A draft
// whose save outcome has not been acknowledged is never submitted again.
func (s *Service) resultPending(w http.ResponseWriter, r *http.Request, draft *types.ReviewDraft) bool {
	if draft.Result == nil || !draft.Result.Open {
		return false
	}

	s.logger.WithField("draft_id", draft.ID).Info("ignoring save while result is open")
	s.redirectToDraft(w, r, draft.ID, nil)
	return true
}

// saveDraft submits the documents to the backend and stores the outcome on
// the draft so the result dialog survives the redirect.
func (s *Service) saveDraft(w http.ResponseWriter, r *http.Request, draft *types.ReviewDraft) {
	ctx := r.Context()
	custID := draft.CustomerID()
	endpoint := backend.SaveEndpoint(custID)

	logger := s.logger.WithFields(logrus.Fields{
		"draft_id": draft.ID,
		"user_id":  draft.UserID,
		"cust_id":  custID,
		"endpoint": endpoint,
	})

	resp, err := s.saver.SaveDetails(ctx, backend.SaveRequest{
		UserID:   draft.UserID,
		CustID:   custID,
		Entities: draft.Documents,
	})
	s.metrics.SaveAttempted(endpoint, err)

	if err != nil {
		logger.WithError(err).Error("failed to save details")
	} else {
		logger.WithFields(logrus.Fields{
			"status":        resp.Status,
			"saved_cust_id": resp.CustID,
		}).Info("details saved")
	}

	draft.Result = review.ResultFor(err)
	if err := s.drafts.UpdateDraft(ctx, draft); err != nil {
		logger.WithError(err).Error("failed to store save result")
		s.internalServerError(w)
		return
	}

	s.redirectToDraft(w, r, draft.ID, nil)
}

// loadDraft resolves the draft in the path for the signed in user. Drafts
// of other users are reported as missing.
func (s *Service) loadDraft(w http.ResponseWriter, r *http.Request) (*types.ReviewDraft, bool) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return nil, false
	}

	draftID := r.PathValue("draftID")
	if !utils.IsNanoID(draftID) {
		http.NotFound(w, r)
		return nil, false
	}

	draft, err := s.drafts.Draft(ctx, draftID)
	if err != nil {
		if errors.Is(err, types.ErrDraftNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		s.logger.WithError(err).WithField("draft_id", draftID).Error("failed to load draft")
		s.internalServerError(w)
		return nil, false
	}

	if draft.UserID != userID {
		s.logger.WithFields(logrus.Fields{
			"draft_id": draftID,
			"user_id":  userID,
		}).Warn("draft requested by another user")
		http.NotFound(w, r)
		return nil, false
	}

	return draft, true
}

func (s *Service) documentIndex(w http.ResponseWriter, r *http.Request, draft *types.ReviewDraft) (int, bool) {
	docIndex, err := strconv.Atoi(r.PathValue("doc"))
	if err != nil || docIndex < 0 || docIndex >= len(draft.Documents) {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return 0, false
	}
	return docIndex, true
}

// applyPostedEdits decodes the page form and folds the field values into
// draft. Edits naming fields the draft does not have are rejected.
func (s *Service) applyPostedEdits(w http.ResponseWriter, r *http.Request, draft *types.ReviewDraft) (*confirmForm, bool) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return nil, false
	}

	var f confirmForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode confirm form")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return nil, false
	}

	docs, err := review.ApplyEdits(draft.Documents, f.edits())
	if err != nil {
		s.logger.WithError(err).WithField("draft_id", draft.ID).Info("rejected edits")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return nil, false
	}
	draft.Documents = docs

	return &f, true
}

func documentTitle(doc types.Document, index int) string {
	docType := doc.DocumentType()
	if docType == "" {
		docType = "Unknown"
	}
	return fmt.Sprintf("Document %d - %s", index+1, docType)
}

// defaultFormAction picks the action bound to the Enter key: the add
// dialog or result dialog when one is open, Confirm otherwise.
func defaultFormAction(data *types.ConfirmDetailsPageData) string {
	base := confirmDetailsPath(data.DraftID)
	switch {
	case data.Result != nil && data.Result.Open:
		return base + "/result"
	case data.AddField != nil:
		return fmt.Sprintf("%s/documents/%d/fields", base, data.AddField.DocIndex)
	default:
		return base + "/confirm"
	}
}

func buildConfirmPage(draft *types.ReviewDraft) *types.ConfirmDetailsPageData {
	data := &types.ConfirmDetailsPageData{
		BasePageData:  types.BasePageData{Title: "Confirm Your KYC Details"},
		DraftID:       draft.ID,
		CustID:        draft.CustomerID(),
		UploadedFiles: draft.UploadedFiles,
		NoData:        len(draft.Documents) == 0,
		Result:        draft.Result,
	}

	for i, doc := range draft.Documents {
		card := types.DocumentCard{
			Index:  i,
			Number: i + 1,
			Title:  documentTitle(doc, i),
		}
		for j, field := range doc {
			card.Fields = append(card.Fields, types.FieldInput{
				Index: j,
				Key:   field.Key,
				Label: fieldLabel(field.Key),
				Value: utils.PtrString(field.Value),
				Null:  field.Value == nil,
			})
		}
		data.Documents = append(data.Documents, card)
	}

	return data
}
