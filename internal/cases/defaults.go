package cases

import "github.com/google/uuid"

const (
	defaultState           = "CA"
	defaultTargetCloseDays = 30
)

// NewCase synthesizes the default record for a brand-new scenario prior to
// first save. The server assigns case_id and timestamps on create.
func NewCase(userID string, role UserRole) Case {
	return Case{
		CreatedBy: CreatedBy{UserID: userID, Role: normalizeRole(role)},
		Status:    StatusIntake,
		Deal: Deal{
			Purpose:         PurposePurchase,
			Occupancy:       OccupancyPrimary,
			PropertyType:    PropertySFR,
			State:           defaultState,
			TargetCloseDays: defaultTargetCloseDays,
		},
		Borrowers: []Borrower{NewBorrower(true)},
		Income: Income{
			DocumentsSeen: []string{},
		},
		Assets:      Assets{},
		Liabilities: Liabilities{},
		Property:    Property{},
		Calculations: Calculations{
			LTV:      Unknown,
			FrontDTI: Unknown,
			BackDTI:  Unknown,
		},
		RiskFlags: []RiskFlag{},
		Copilot: Copilot{
			SuggestedDirections: []SuggestedDirection{},
			QuestionsToAskNext:  []string{},
			DocChecklist:        []string{},
			GuidelineCitations:  []GuidelineCitation{},
		},
		HumanDecision: HumanDecision{},
		Outcome: Outcome{
			AUS:           AUSUnknown,
			Decision:      DecisionUnknown,
			Conditions:    []string{},
			DenialReasons: []string{},
			FinalLender:   LenderUnknown,
			ClosedDate:    nil,
		},
	}
}

// NewBorrower returns a blank borrower with a fresh stable id.
func NewBorrower(primary bool) Borrower {
	return Borrower{
		BorrowerID:  uuid.NewString(),
		IsPrimary:   primary,
		Citizenship: CitizenshipUnknown,
		Employment: Employment{
			IncomeType: IncomeUnknown,
		},
	}
}
