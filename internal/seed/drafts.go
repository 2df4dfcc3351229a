package seed

import (
	"context"
	"errors"
	"fmt"

	"kycreview/internal/utils"
	"kycreview/pkg/types"
)

// DraftStore is the part of a draft store the seeder writes through.
type DraftStore interface {
	Draft(ctx context.Context, id string) (*types.ReviewDraft, error)
	CreateDraft(ctx context.Context, draft *types.ReviewDraft) error
	UpdateDraft(ctx context.Context, draft *types.ReviewDraft) error
}

type sampleDraft struct {
	ID            string
	CustID        string
	UploadedFiles []string
	Documents     types.Documents
}

func field(key string, value *string) types.Field {
	return types.Field{Key: key, Value: value}
}

// The IDs are fixed so reseeding overwrites instead of piling up drafts.
// To generate new IDs: `go run ./cmd/kycreview drafts new-id`
var sampleDrafts = []sampleDraft{
	{
		ID:            "k3Vq8XbN2mPz7RtY5wLc9HsJ4dFg6AeU",
		UploadedFiles: []string{"pan_card.jpg", "aadhaar_front.png"},
		Documents: types.Documents{
			{
				field("document_type", utils.StringPtr("PAN")),
				field("name", utils.StringPtr("Ravi Kumar")),
				field("father_name", utils.StringPtr("Suresh Kumar")),
				field("date_of_birth", utils.StringPtr("14/08/1991")),
				field("pan_number", utils.StringPtr("ABCDE1234F")),
			},
			{
				field("document_type", utils.StringPtr("Aadhaar")),
				field("name", utils.StringPtr("Ravi Kumar")),
				field("gender", utils.StringPtr("Male")),
				field("date_of_birth", utils.StringPtr("14/08/1991")),
				field("aadhaar_number", nil),
			},
		},
	},
	{
		ID:            "Tn4Wm9Qa2Zk7Lp3Xv8Bc5Rd6Yf1Gh0Js",
		CustID:        "CUST-000142",
		UploadedFiles: []string{"passport.pdf", "utility_bill.pdf"},
		Documents: types.Documents{
			{
				field("document_type", utils.StringPtr("Passport")),
				field("name", utils.StringPtr("Anita Sharma")),
				field("passport_number", utils.StringPtr("P1234567")),
				field("nationality", utils.StringPtr("Indian")),
				field("date_of_expiry", utils.StringPtr("02/11/2031")),
			},
			{
				field("document_type", utils.StringPtr("Utility Bill")),
				field("name", utils.StringPtr("A. Sharma")),
				field("address", utils.StringPtr("12 MG Road, Pune")),
			},
		},
	},
}

// SeedDrafts writes the sample drafts for userID, replacing earlier copies.
// The second sample carries a name conflict on purpose.
func SeedDrafts(ctx context.Context, drafts DraftStore, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required to seed drafts")
	}

	ids := make([]string, 0, len(sampleDrafts))
	for _, sample := range sampleDrafts {
		draft := &types.ReviewDraft{
			ID:            sample.ID,
			UserID:        userID,
			CustID:        utils.StringPtrOrNil(sample.CustID),
			UploadedFiles: append([]string(nil), sample.UploadedFiles...),
			Documents:     sample.Documents.Clone(),
		}

		_, err := drafts.Draft(ctx, sample.ID)
		switch {
		case errors.Is(err, types.ErrDraftNotFound):
			err = drafts.CreateDraft(ctx, draft)
		case err == nil:
			err = drafts.UpdateDraft(ctx, draft)
		}
		if err != nil {
			return ids, fmt.Errorf("seed draft %s: %w", sample.ID, err)
		}

		ids = append(ids, sample.ID)
	}

	return ids, nil
}
