package store

import (
	"context"
	"fmt"
	"time"

	"kycreview/internal/utils"
	"kycreview/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftTableName = "kycreview.review_drafts"

var draftColumns = utils.StructTagValues(types.ReviewDraft{})

type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

// Draft retrieves a single review draft by ID
func (r *DraftRepository) Draft(ctx context.Context, id string) (*types.ReviewDraft, error) {
	query, args, err := psql().
		Select(draftColumns...).
		From(draftTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft query: %w", err)
	}

	var draft = new(types.ReviewDraft)
	err = pgxscan.Get(ctx, r.pool, draft, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDraftNotFound
	}

	return draft, nil
}

// CreateDraft inserts a new draft, stamping its timestamps
func (r *DraftRepository) CreateDraft(ctx context.Context, draft *types.ReviewDraft) error {
	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	row := draftRow(draft)
	row["id"] = draft.ID
	row["created_at"] = draft.CreatedAt

	query, args, err := psql().
		Insert(draftTableName).
		SetMap(row).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert draft query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

// UpdateDraft replaces the mutable state of a draft. The whole document
// array is written at once, so the last writer wins.
func (r *DraftRepository) UpdateDraft(ctx context.Context, draft *types.ReviewDraft) error {
	draft.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(draftTableName).
		SetMap(draftRow(draft)).
		Where(sq.Eq{"id": draft.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update draft query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDraftNotFound
	}

	return nil
}

// DeleteDraft removes a draft record
func (r *DraftRepository) DeleteDraft(ctx context.Context, id string) error {
	query, args, _ := psql().
		Delete(draftTableName).
		Where(sq.Eq{"id": id}).
		ToSql()

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

// PurgeDraftsBefore removes drafts not touched since cutoff
func (r *DraftRepository) PurgeDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, _ := psql().
		Delete(draftTableName).
		Where(sq.Lt{"updated_at": cutoff}).
		ToSql()

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// draftRow maps the mutable columns. documents is a json column, not jsonb,
// so the extractor's key order survives the round trip.
func draftRow(draft *types.ReviewDraft) map[string]any {
	documents := draft.Documents
	if documents == nil {
		documents = types.Documents{}
	}

	var result any
	if draft.Result != nil {
		result = string(utils.MustMarshalJSON(draft.Result))
	}

	uploaded := draft.UploadedFiles
	if uploaded == nil {
		uploaded = []string{}
	}

	return map[string]any{
		"user_id":        draft.UserID,
		"cust_id":        draft.CustID,
		"uploaded_files": uploaded,
		"documents":      string(utils.MustMarshalJSON(documents)),
		"result":         result,
		"updated_at":     draft.UpdatedAt,
	}
}
