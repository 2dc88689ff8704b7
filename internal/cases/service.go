package cases

import (
	"context"
	"encoding/json"
	"fmt"
)

// UpstreamAPI is the slice of the remote case backend the service needs.
// The concrete implementation lives in internal/upstream.
type UpstreamAPI interface {
	ListCases(ctx context.Context, tenantID, userID, status string) (json.RawMessage, error)
	CreateCase(ctx context.Context, tenantID, userID string, payload any) (json.RawMessage, error)
	GetCase(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error)
	UpdateCase(ctx context.Context, tenantID, userID, caseID string, payload any) (json.RawMessage, error)
	Calculate(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error)
	GuidelinesQuery(ctx context.Context, tenantID, userID, caseID string, input any) (json.RawMessage, error)
	Snapshot(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error)
	UpdateOutcome(ctx context.Context, tenantID, userID, caseID string, payload any) (json.RawMessage, error)
}

// Service contains the case workflow: every byte read from the backend goes
// through the envelope extractors, and every mutation round-trips the full
// record. The service itself holds no case state.
type Service struct {
	Upstream UpstreamAPI
}

// List fetches and normalizes the tenant's case list. An upstream payload
// with no recognizable list yields an empty slice, not an error.
func (s *Service) List(ctx context.Context, tenantID, userID, status string) ([]Case, error) {
	raw, err := s.Upstream.ListCases(ctx, tenantID, userID, status)
	if err != nil {
		return nil, err
	}
	return ExtractCaseList(raw)
}

// Get fetches one case and unwraps the detail envelope.
func (s *Service) Get(ctx context.Context, tenantID, userID, caseID string) (Case, error) {
	raw, err := s.Upstream.GetCase(ctx, tenantID, userID, caseID)
	if err != nil {
		return Case{}, err
	}
	return ExtractCaseRecord(raw)
}

// Create builds a defaulted record for the given user, merges any submitted
// intake form over it, and posts it. The server assigns identity and
// timestamps.
func (s *Service) Create(ctx context.Context, tenantID, userID string, form *FormState) (Case, error) {
	record := NewCase(userID, RoleBroker)
	if form != nil {
		record = MergeFormState(record, *form)
	}
	raw, err := s.Upstream.CreateCase(ctx, tenantID, userID, record)
	if err != nil {
		return Case{}, err
	}
	return ExtractCaseRecord(raw)
}

// GetForm fetches a case and converts it to editable form state.
func (s *Service) GetForm(ctx context.Context, tenantID, userID, caseID string) (FormState, error) {
	record, err := s.Get(ctx, tenantID, userID, caseID)
	if err != nil {
		return FormState{}, err
	}
	return ToFormState(record), nil
}

// SaveForm applies submitted form state to the current record and persists
// the full object. The response is re-normalized so the caller always sees
// what the backend actually stored.
func (s *Service) SaveForm(ctx context.Context, tenantID, userID, caseID string, form FormState) (Case, error) {
	record, err := s.Get(ctx, tenantID, userID, caseID)
	if err != nil {
		return Case{}, err
	}
	updated := MergeFormState(record, form)
	raw, err := s.Upstream.UpdateCase(ctx, tenantID, userID, caseID, updated)
	if err != nil {
		return Case{}, err
	}
	return ExtractCaseRecord(raw)
}

// AddBorrower appends a fresh borrower to the case and persists the result.
func (s *Service) AddBorrower(ctx context.Context, tenantID, userID, caseID string) (Case, error) {
	return s.mutateBorrowers(ctx, tenantID, userID, caseID, func(list []Borrower) ([]Borrower, bool, error) {
		return AddBorrower(list), true, nil
	})
}

// RemoveBorrower removes the borrower with the given stable id. Removing the
// last borrower is an invariant violation: the case is left untouched and no
// upstream write happens.
func (s *Service) RemoveBorrower(ctx context.Context, tenantID, userID, caseID, borrowerID string) (Case, error) {
	return s.mutateBorrowers(ctx, tenantID, userID, caseID, func(list []Borrower) ([]Borrower, bool, error) {
		i, ok := borrowerIndex(list, borrowerID)
		if !ok {
			return nil, false, fmt.Errorf("borrower %s: %w", borrowerID, ErrNotFound)
		}
		if len(list) <= 1 {
			return list, false, nil
		}
		return RemoveBorrower(list, i), true, nil
	})
}

// SetPrimaryBorrower makes the borrower with the given id the one primary.
func (s *Service) SetPrimaryBorrower(ctx context.Context, tenantID, userID, caseID, borrowerID string) (Case, error) {
	return s.mutateBorrowers(ctx, tenantID, userID, caseID, func(list []Borrower) ([]Borrower, bool, error) {
		i, ok := borrowerIndex(list, borrowerID)
		if !ok {
			return nil, false, fmt.Errorf("borrower %s: %w", borrowerID, ErrNotFound)
		}
		return SetPrimaryBorrower(list, i), true, nil
	})
}

func (s *Service) mutateBorrowers(ctx context.Context, tenantID, userID, caseID string, mutate func([]Borrower) ([]Borrower, bool, error)) (Case, error) {
	record, err := s.Get(ctx, tenantID, userID, caseID)
	if err != nil {
		return Case{}, err
	}
	record.Borrowers = NormalizeBorrowers(record.Borrowers)
	next, changed, err := mutate(record.Borrowers)
	if err != nil {
		return Case{}, err
	}
	if !changed {
		return record, nil
	}
	record.Borrowers = next
	raw, err := s.Upstream.UpdateCase(ctx, tenantID, userID, caseID, record)
	if err != nil {
		return Case{}, err
	}
	return ExtractCaseRecord(raw)
}

// SaveOutcome converts and posts the outcome section.
func (s *Service) SaveOutcome(ctx context.Context, tenantID, userID, caseID string, form OutcomeForm) (json.RawMessage, error) {
	return s.Upstream.UpdateOutcome(ctx, tenantID, userID, caseID, OutcomeFromForm(form))
}

// Calculate, GuidelinesQuery, and Snapshot are passthroughs: the backend's
// computation is opaque here and its responses are returned as-is.
func (s *Service) Calculate(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error) {
	return s.Upstream.Calculate(ctx, tenantID, userID, caseID)
}

// GuidelinesInput is the request body for a guideline retrieval query.
type GuidelinesInput struct {
	Question string         `json:"question"`
	Backend  string         `json:"backend,omitempty"`
	Filters  map[string]any `json:"filters,omitempty"`
}

func (s *Service) GuidelinesQuery(ctx context.Context, tenantID, userID, caseID string, input GuidelinesInput) (json.RawMessage, error) {
	return s.Upstream.GuidelinesQuery(ctx, tenantID, userID, caseID, input)
}

func (s *Service) Snapshot(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error) {
	return s.Upstream.Snapshot(ctx, tenantID, userID, caseID)
}

func borrowerIndex(list []Borrower, borrowerID string) (int, bool) {
	for i := range list {
		if list[i].BorrowerID == borrowerID {
			return i, true
		}
	}
	return 0, false
}
