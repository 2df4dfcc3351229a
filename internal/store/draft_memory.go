package store

import (
	"context"
	"sync"
	"time"

	"kycreview/pkg/types"
)

// MemoryDraftStore keeps drafts in process. Drafts are deep-copied on the way
// in and out so callers never share state with the store.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*types.ReviewDraft
	now    func() time.Time
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[string]*types.ReviewDraft),
		now:    time.Now,
	}
}

func (s *MemoryDraftStore) Draft(_ context.Context, id string) (*types.ReviewDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, types.ErrDraftNotFound
	}
	return draft.Clone(), nil
}

func (s *MemoryDraftStore) CreateDraft(_ context.Context, draft *types.ReviewDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	draft.CreatedAt = now
	draft.UpdatedAt = now
	s.drafts[draft.ID] = draft.Clone()
	return nil
}

func (s *MemoryDraftStore) UpdateDraft(_ context.Context, draft *types.ReviewDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.drafts[draft.ID]
	if !ok {
		return types.ErrDraftNotFound
	}

	draft.CreatedAt = existing.CreatedAt
	draft.UpdatedAt = s.now()
	s.drafts[draft.ID] = draft.Clone()
	return nil
}

func (s *MemoryDraftStore) DeleteDraft(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, id)
	return nil
}

func (s *MemoryDraftStore) PurgeDraftsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, draft := range s.drafts {
		if draft.UpdatedAt.Before(cutoff) {
			delete(s.drafts, id)
			n++
		}
	}
	return n, nil
}
