package drafts

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DraftsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Draft // draft id -> draft
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Draft),
	}
}

// Create stores a new draft.
func (r *MemoryRepo) Create(ctx context.Context, draft Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[draft.ID] = draft
	return nil
}

// Get returns a draft scoped to a tenant and user.
func (r *MemoryRepo) Get(ctx context.Context, tenantID, userID, draftID string) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.data[draftID]
	if !ok || draft.TenantID != tenantID || draft.UserID != userID {
		return Draft{}, ErrNotFound
	}
	return draft, nil
}

// Update overwrites an existing draft.
func (r *MemoryRepo) Update(ctx context.Context, draft Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[draft.ID]
	if !ok || existing.TenantID != draft.TenantID || existing.UserID != draft.UserID {
		return ErrNotFound
	}
	r.data[draft.ID] = draft
	return nil
}

// ListByUser returns drafts for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var out []Draft
	for _, draft := range r.data {
		if draft.TenantID == tenantID && draft.UserID == userID {
			out = append(out, draft)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if offset >= len(out) {
		return []Draft{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// Delete removes a draft.
func (r *MemoryRepo) Delete(ctx context.Context, tenantID, userID, draftID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.data[draftID]
	if !ok || draft.TenantID != tenantID || draft.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, draftID)
	return nil
}

var _ DraftsRepo = (*MemoryRepo)(nil)
