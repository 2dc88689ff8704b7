package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"casedesk/internal/cases"
)

func testDraft() Draft {
	now := time.Now().UTC().Truncate(time.Second)
	return Draft{
		ID:        "draft-1",
		TenantID:  "t-1",
		UserID:    "u-1",
		Step:      StepBorrowers,
		Form:      cases.ToFormState(cases.NewCase("u-1", cases.RoleBroker)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPGRepoCreateStoresFormAsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	draft := testDraft()

	mock.ExpectExec("INSERT INTO case_drafts").
		WithArgs(
			draft.ID,
			draft.TenantID,
			draft.UserID,
			draft.Step,
			sqlmock.AnyArg(), // form JSONB
			nil,              // case_id
			draft.CreatedAt,
			draft.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), draft); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetDecodesForm(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	draft := testDraft()
	form, err := json.Marshal(draft.Form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "user_id", "step", "form", "case_id", "created_at", "updated_at",
	}).AddRow(draft.ID, draft.TenantID, draft.UserID, draft.Step, form, nil, draft.CreatedAt, draft.UpdatedAt)

	mock.ExpectQuery("SELECT (.+) FROM case_drafts").
		WithArgs(draft.TenantID, draft.UserID, draft.ID).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), draft.TenantID, draft.UserID, draft.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != draft.ID || got.Step != StepBorrowers {
		t.Fatalf("unexpected draft: %+v", got)
	}
	if got.Form.Deal.State != "CA" {
		t.Fatalf("expected decoded form state, got %q", got.Form.Deal.State)
	}
	if got.CaseID != "" {
		t.Fatalf("expected no case id, got %q", got.CaseID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM case_drafts").
		WithArgs("t-1", "u-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "user_id", "step", "form", "case_id", "created_at", "updated_at",
		}))

	_, err = repo.Get(context.Background(), "t-1", "u-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	draft := testDraft()

	mock.ExpectExec("UPDATE case_drafts").
		WithArgs(
			draft.Step,
			sqlmock.AnyArg(),
			nil,
			draft.UpdatedAt,
			draft.TenantID,
			draft.UserID,
			draft.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), draft); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM case_drafts").
		WithArgs("t-1", "u-1", "draft-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "t-1", "u-1", "draft-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
