package drafts

import "context"

// DraftsRepo defines persistence operations for wizard drafts. All lookups
// are scoped to a tenant and user pair.
type DraftsRepo interface {
	Create(ctx context.Context, draft Draft) error
	Get(ctx context.Context, tenantID, userID, draftID string) (Draft, error)
	Update(ctx context.Context, draft Draft) error
	ListByUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Draft, error)
	Delete(ctx context.Context, tenantID, userID, draftID string) error
}
