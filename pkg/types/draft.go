package types

import (
	"errors"
	"time"
)

var ErrDraftNotFound = errors.New("review draft not found")

type ResultKind string

const (
	ResultSave  ResultKind = "save"
	ResultError ResultKind = "error"
)

// ResultDialog is the outcome dialog shown after a save attempt.
type ResultDialog struct {
	Open    bool       `json:"open"`
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Type    ResultKind `json:"type"`
}

// ReviewDraft holds the state of one confirm-details page between requests.
// It is discarded once a successful save is acknowledged.
type ReviewDraft struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	CustID        *string       `db:"cust_id"`
	UploadedFiles []string      `db:"uploaded_files"`
	Documents     Documents     `db:"documents"`
	Result        *ResultDialog `db:"result"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func (d *ReviewDraft) CustomerID() string {
	if d.CustID == nil {
		return ""
	}
	return *d.CustID
}

func (d *ReviewDraft) Clone() *ReviewDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.CustID = cloneString(d.CustID)
	out.UploadedFiles = append([]string(nil), d.UploadedFiles...)
	out.Documents = d.Documents.Clone()
	if d.Result != nil {
		result := *d.Result
		out.Result = &result
	}
	return &out
}

// UploadedFile is an entry of the upstream page's uploadedFiles list.
type UploadedFile struct {
	Name string `json:"name"`
}

// Handoff is the navigation state the upload page passes to the confirm page.
type Handoff struct {
	CustID        string         `json:"cust_id"`
	UploadedFiles []UploadedFile `json:"uploadedFiles"`
	ExtractedData Documents      `json:"extractedData"`
}
