package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/review"
	"kycreview/internal/store"
	"kycreview/internal/utils"
)

func TestSampleDraftIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, sample := range sampleDrafts {
		assert.True(t, utils.IsNanoID(sample.ID), sample.ID)
		assert.False(t, seen[sample.ID], "duplicate id %s", sample.ID)
		seen[sample.ID] = true
	}
}

func TestSeedDraftsIsRepeatable(t *testing.T) {
	ctx := context.Background()
	drafts := store.NewMemoryDraftStore()

	ids, err := SeedDrafts(ctx, drafts, "user-1")
	require.NoError(t, err)
	require.Len(t, ids, len(sampleDrafts))

	first, err := drafts.Draft(ctx, ids[0])
	require.NoError(t, err)
	first.Documents = nil
	require.NoError(t, drafts.UpdateDraft(ctx, first))

	_, err = SeedDrafts(ctx, drafts, "user-2")
	require.NoError(t, err)

	reseeded, err := drafts.Draft(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "user-2", reseeded.UserID)
	assert.Len(t, reseeded.Documents, 2)
	assert.False(t, review.HasNameConflict(reseeded.Documents))

	conflicted, err := drafts.Draft(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, review.HasNameConflict(conflicted.Documents))
	assert.Equal(t, "CUST-000142", conflicted.CustomerID())
}

func TestSeedDraftsRequiresUser(t *testing.T) {
	_, err := SeedDrafts(context.Background(), store.NewMemoryDraftStore(), "")
	assert.Error(t, err)
}
