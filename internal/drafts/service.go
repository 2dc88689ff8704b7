package drafts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"casedesk/internal/cases"
)

// CaseCreator submits a finished form to the case backend. Implemented by
// the cases service.
type CaseCreator interface {
	Create(ctx context.Context, tenantID, userID string, form *cases.FormState) (cases.Case, error)
}

// Service coordinates wizard drafts.
type Service struct {
	Repo  DraftsRepo
	Cases CaseCreator
	now   func() time.Time
}

// NewService constructs a drafts service.
func NewService(repo DraftsRepo, creator CaseCreator) *Service {
	return &Service{
		Repo:  repo,
		Cases: creator,
		now:   time.Now,
	}
}

// Create starts a new draft seeded with the same defaults a fresh case
// record gets, so the wizard opens fully populated.
func (s *Service) Create(ctx context.Context, tenantID, userID string) (Draft, error) {
	seed := cases.NewCase(userID, cases.RoleBroker)
	now := s.now().UTC()
	draft := Draft{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		UserID:    userID,
		Step:      StepDeal,
		Form:      cases.ToFormState(seed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, draft); err != nil {
		return Draft{}, fmt.Errorf("create draft: %w", err)
	}
	return draft, nil
}

// Get returns a draft.
func (s *Service) Get(ctx context.Context, tenantID, userID, draftID string) (Draft, error) {
	return s.Repo.Get(ctx, tenantID, userID, draftID)
}

// List returns the user's drafts, most recently touched first.
func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Draft, error) {
	return s.Repo.ListByUser(ctx, tenantID, userID, limit, offset)
}

// Save stores the latest form state and step cursor. Completed drafts are
// frozen.
func (s *Service) Save(ctx context.Context, tenantID, userID, draftID string, step int, form cases.FormState) (Draft, error) {
	draft, err := s.Repo.Get(ctx, tenantID, userID, draftID)
	if err != nil {
		return Draft{}, err
	}
	if draft.Completed() {
		return Draft{}, ErrCompleted
	}

	draft.Step = clampStep(step)
	draft.Form = form
	draft.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Complete submits the draft's form upstream as a new case and records the
// resulting case id on the draft.
func (s *Service) Complete(ctx context.Context, tenantID, userID, draftID string) (Draft, cases.Case, error) {
	draft, err := s.Repo.Get(ctx, tenantID, userID, draftID)
	if err != nil {
		return Draft{}, cases.Case{}, err
	}
	if draft.Completed() {
		return Draft{}, cases.Case{}, ErrCompleted
	}

	form := draft.Form
	record, err := s.Cases.Create(ctx, tenantID, userID, &form)
	if err != nil {
		return Draft{}, cases.Case{}, fmt.Errorf("submit draft %s: %w", draftID, err)
	}

	draft.CaseID = record.CaseID
	draft.Step = StepReview
	draft.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, draft); err != nil {
		return Draft{}, cases.Case{}, err
	}
	return draft, record, nil
}

// Delete discards a draft.
func (s *Service) Delete(ctx context.Context, tenantID, userID, draftID string) error {
	return s.Repo.Delete(ctx, tenantID, userID, draftID)
}
