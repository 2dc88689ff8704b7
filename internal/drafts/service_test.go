package drafts

import (
	"context"
	"errors"
	"testing"

	"casedesk/internal/cases"
)

type fakeCreator struct {
	created []cases.FormState
	fail    error
}

func (f *fakeCreator) Create(ctx context.Context, tenantID, userID string, form *cases.FormState) (cases.Case, error) {
	if f.fail != nil {
		return cases.Case{}, f.fail
	}
	record := cases.NewCase(userID, cases.RoleBroker)
	if form != nil {
		f.created = append(f.created, *form)
		record = cases.MergeFormState(record, *form)
	}
	record.CaseID = "c-new"
	return record, nil
}

func TestServiceCreateSeedsWizardDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeCreator{})

	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if draft.ID == "" {
		t.Fatalf("expected draft id")
	}
	if draft.Step != StepDeal {
		t.Fatalf("expected wizard to start at the deal step, got %d", draft.Step)
	}
	if draft.Form.Deal.State != "CA" || draft.Form.Deal.TargetCloseDays != "30" {
		t.Fatalf("expected seeded deal defaults, got %+v", draft.Form.Deal)
	}
	if len(draft.Form.Borrowers) != 1 || !draft.Form.Borrowers[0].IsPrimary {
		t.Fatalf("expected one primary borrower, got %+v", draft.Form.Borrowers)
	}
}

func TestServiceSaveClampsStep(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeCreator{})
	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	saved, err := svc.Save(context.Background(), "t-1", "u-1", draft.ID, 99, draft.Form)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Step != StepReview {
		t.Fatalf("expected step clamped to review, got %d", saved.Step)
	}

	saved, err = svc.Save(context.Background(), "t-1", "u-1", draft.ID, -3, draft.Form)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Step != StepDeal {
		t.Fatalf("expected step clamped to deal, got %d", saved.Step)
	}
}

func TestServiceCompleteSubmitsForm(t *testing.T) {
	creator := &fakeCreator{}
	svc := NewService(NewMemoryRepo(), creator)
	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	form := draft.Form
	form.Income.MonthlyGrossIncome = "7400"
	if _, err := svc.Save(context.Background(), "t-1", "u-1", draft.ID, StepReview, form); err != nil {
		t.Fatalf("save: %v", err)
	}

	done, record, err := svc.Complete(context.Background(), "t-1", "u-1", draft.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if record.CaseID != "c-new" {
		t.Fatalf("expected created case, got %+v", record)
	}
	if done.CaseID != "c-new" || !done.Completed() {
		t.Fatalf("expected draft linked to case, got %+v", done)
	}
	if len(creator.created) != 1 || creator.created[0].Income.MonthlyGrossIncome != "7400" {
		t.Fatalf("expected the saved form submitted, got %+v", creator.created)
	}
}

func TestServiceCompletedDraftIsFrozen(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeCreator{})
	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.Complete(context.Background(), "t-1", "u-1", draft.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := svc.Save(context.Background(), "t-1", "u-1", draft.ID, StepDeal, draft.Form); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on save, got %v", err)
	}
	if _, _, err := svc.Complete(context.Background(), "t-1", "u-1", draft.ID); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on re-complete, got %v", err)
	}
}

func TestServiceCompleteFailureLeavesDraftOpen(t *testing.T) {
	creator := &fakeCreator{fail: errors.New("backend down")}
	svc := NewService(NewMemoryRepo(), creator)
	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.Complete(context.Background(), "t-1", "u-1", draft.ID); err == nil {
		t.Fatalf("expected error")
	}
	got, err := svc.Get(context.Background(), "t-1", "u-1", draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed() {
		t.Fatalf("failed submission must not mark the draft completed")
	}
}

func TestServiceTenantScoping(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeCreator{})
	draft, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "t-2", "u-1", draft.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "t-1", "other", draft.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across users, got %v", err)
	}
}

func TestServiceListNewestFirst(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeCreator{})
	first, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Touch the first draft so it becomes the most recent.
	if _, err := svc.Save(context.Background(), "t-1", "u-1", first.ID, StepProperty, first.Form); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := svc.List(context.Background(), "t-1", "u-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(out))
	}
	if out[0].ID != first.ID || out[1].ID != second.ID {
		t.Fatalf("expected most recently touched first, got %+v", out)
	}
}
