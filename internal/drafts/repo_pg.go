package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"casedesk/internal/cases"
)

// PGRepo implements DraftsRepo using Postgres. The form state is stored as
// a JSONB document so wizard fields can evolve without schema changes.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new draft.
func (r *PGRepo) Create(ctx context.Context, draft Draft) error {
	const query = `
INSERT INTO case_drafts (
    id,
    tenant_id,
    user_id,
    step,
    form,
    case_id,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	form, err := json.Marshal(draft.Form)
	if err != nil {
		return fmt.Errorf("encode draft form: %w", err)
	}

	var caseID sql.NullString
	if draft.CaseID != "" {
		caseID = sql.NullString{String: draft.CaseID, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		draft.ID,
		draft.TenantID,
		draft.UserID,
		draft.Step,
		form,
		caseID,
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	return err
}

// Get fetches a draft by ID scoped to a tenant and user.
func (r *PGRepo) Get(ctx context.Context, tenantID, userID, draftID string) (Draft, error) {
	const query = `
SELECT id, tenant_id, user_id, step, form, case_id, created_at, updated_at
FROM case_drafts
WHERE tenant_id = $1 AND user_id = $2 AND id = $3
LIMIT 1`

	var draft Draft
	var form []byte
	var caseID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, tenantID, userID, draftID).Scan(
		&draft.ID,
		&draft.TenantID,
		&draft.UserID,
		&draft.Step,
		&form,
		&caseID,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	if err := decodeForm(form, &draft.Form); err != nil {
		return Draft{}, err
	}
	if caseID.Valid {
		draft.CaseID = caseID.String
	}
	return draft, nil
}

// Update overwrites the mutable fields of an existing draft.
func (r *PGRepo) Update(ctx context.Context, draft Draft) error {
	const query = `
UPDATE case_drafts
SET step = $1, form = $2, case_id = $3, updated_at = $4
WHERE tenant_id = $5 AND user_id = $6 AND id = $7`

	form, err := json.Marshal(draft.Form)
	if err != nil {
		return fmt.Errorf("encode draft form: %w", err)
	}

	var caseID sql.NullString
	if draft.CaseID != "" {
		caseID = sql.NullString{String: draft.CaseID, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		draft.Step,
		form,
		caseID,
		draft.UpdatedAt,
		draft.TenantID,
		draft.UserID,
		draft.ID,
	)
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists drafts ordered by most recent activity.
func (r *PGRepo) ListByUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Draft, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, tenant_id, user_id, step, form, case_id, created_at, updated_at
FROM case_drafts
WHERE tenant_id = $1 AND user_id = $2
ORDER BY updated_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		var draft Draft
		var form []byte
		var caseID sql.NullString
		if err := rows.Scan(
			&draft.ID,
			&draft.TenantID,
			&draft.UserID,
			&draft.Step,
			&form,
			&caseID,
			&draft.CreatedAt,
			&draft.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := decodeForm(form, &draft.Form); err != nil {
			return nil, err
		}
		if caseID.Valid {
			draft.CaseID = caseID.String
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

// Delete removes a draft.
func (r *PGRepo) Delete(ctx context.Context, tenantID, userID, draftID string) error {
	const query = `
DELETE FROM case_drafts
WHERE tenant_id = $1 AND user_id = $2 AND id = $3`

	res, err := r.DB.ExecContext(ctx, query, tenantID, userID, draftID)
	if err != nil {
		return err
	}
	deleted, _ := res.RowsAffected()
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeForm(raw []byte, form *cases.FormState) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, form); err != nil {
		return fmt.Errorf("decode draft form: %w", err)
	}
	return nil
}

var _ DraftsRepo = (*PGRepo)(nil)
