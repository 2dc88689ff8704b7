package drafts

import (
	"time"

	"casedesk/internal/cases"
)

// Draft is a scenario wizard session that has not been submitted upstream
// yet. The form payload is the same flat state the case form endpoints use,
// so abandoning a draft and resuming it later loses nothing.
type Draft struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	Step      int             `json:"step"`
	Form      cases.FormState `json:"form"`
	CaseID    string          `json:"case_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Completed reports whether the draft has already produced a case.
func (d Draft) Completed() bool {
	return d.CaseID != ""
}

// Wizard step indexes. The review step is last.
const (
	StepDeal = iota
	StepBorrowers
	StepFinancials
	StepProperty
	StepReview

	maxStep = StepReview
)

func clampStep(step int) int {
	if step < 0 {
		return 0
	}
	if step > maxStep {
		return maxStep
	}
	return step
}
