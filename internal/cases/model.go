package cases

import (
	"strings"
	"time"
)

// Closed enumerations used across the Case schema. The backend is display-
// authoritative for status, but every enum read back from the wire passes
// through a normalize helper so unrecognized values degrade to the defined
// baseline member instead of being rejected.
type (
	UserRole     string
	CaseStatus   string
	DealPurpose  string
	Occupancy    string
	PropertyType string
	Citizenship  string
	IncomeType   string
	RiskSeverity string
	OutcomeAUS   string
	OutcomeCall  string
)

const (
	RoleBroker    UserRole = "broker"
	RoleMLO       UserRole = "mlo"
	RoleAssistant UserRole = "assistant"

	StatusIntake    CaseStatus = "intake"
	StatusSubmitted CaseStatus = "submitted"
	StatusApproved  CaseStatus = "approved"
	StatusDenied    CaseStatus = "denied"
	StatusWithdrawn CaseStatus = "withdrawn"
	StatusStalled   CaseStatus = "stalled"

	PurposePurchase DealPurpose = "purchase"
	PurposeRefi     DealPurpose = "refi"
	PurposeCashOut  DealPurpose = "cash_out"

	OccupancyPrimary    Occupancy = "primary"
	OccupancySecond     Occupancy = "second"
	OccupancyInvestment Occupancy = "investment"

	PropertySFR          PropertyType = "sfr"
	PropertyCondo        PropertyType = "condo"
	PropertyTownhome     PropertyType = "townhome"
	PropertyTwoToFour    PropertyType = "2-4_unit"
	PropertyManufactured PropertyType = "manufactured"
	PropertyOther        PropertyType = "other"

	CitizenshipUSCitizen            Citizenship = "us_citizen"
	CitizenshipPermanentResident    Citizenship = "permanent_resident"
	CitizenshipNonPermanentResident Citizenship = "non_permanent_resident"
	CitizenshipUnknown              Citizenship = "unknown"

	IncomeW2           IncomeType = "w2"
	Income1099         IncomeType = "1099"
	IncomeSelfEmployed IncomeType = "self_employed"
	IncomeRetired      IncomeType = "retired"
	IncomeMixed        IncomeType = "mixed"
	IncomeUnknown      IncomeType = "unknown"

	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"

	AUSApprove    OutcomeAUS = "approve"
	AUSEligible   OutcomeAUS = "eligible"
	AUSRefer      OutcomeAUS = "refer"
	AUSIneligible OutcomeAUS = "ineligible"
	AUSUnknown    OutcomeAUS = "unknown"

	DecisionApproved OutcomeCall = "approved"
	DecisionDenied   OutcomeCall = "denied"
	DecisionPending  OutcomeCall = "pending"
	DecisionUnknown  OutcomeCall = "unknown"
)

// LenderUnknown is the literal sentinel string used for outcome.final_lender.
// It is a string-level sentinel, not the numeric Unknown.
const LenderUnknown = "unknown"

// Case is the aggregate root and the sole unit of persistence; updates are
// sent as a full object round-trip, never a partial diff.
type Case struct {
	CaseID        string        `json:"case_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CreatedBy     CreatedBy     `json:"created_by"`
	Status        CaseStatus    `json:"status"`
	Deal          Deal          `json:"deal"`
	Borrowers     []Borrower    `json:"borrowers"`
	Income        Income        `json:"income"`
	Assets        Assets        `json:"assets"`
	Liabilities   Liabilities   `json:"liabilities"`
	Property      Property      `json:"property"`
	Calculations  Calculations  `json:"calculations"`
	RiskFlags     []RiskFlag    `json:"risk_flags"`
	Copilot       Copilot       `json:"copilot"`
	HumanDecision HumanDecision `json:"human_decision"`
	Outcome       Outcome       `json:"outcome"`
}

type CreatedBy struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}

type Deal struct {
	Purpose         DealPurpose  `json:"purpose"`
	Occupancy       Occupancy    `json:"occupancy"`
	PropertyType    PropertyType `json:"property_type"`
	State           string       `json:"state"`
	TargetCloseDays int          `json:"target_close_days"`
}

// Borrower's id stays stable across edits so reordering and deletion can
// target the correct record without relying on position.
type Borrower struct {
	BorrowerID     string        `json:"borrower_id"`
	IsPrimary      bool          `json:"is_primary"`
	CreditScoreMid UnknownNumber `json:"credit_score_mid"`
	Citizenship    Citizenship   `json:"citizenship"`
	Employment     Employment    `json:"employment"`
}

type Employment struct {
	IncomeType             IncomeType    `json:"income_type"`
	JobTimeMonths          UnknownNumber `json:"job_time_months"`
	SelfEmployedTimeMonths UnknownNumber `json:"self_employed_time_months"`
}

type Income struct {
	MonthlyGrossIncome UnknownNumber `json:"monthly_gross_income"`
	IncomeNotes        string        `json:"income_notes"`
	DocumentsSeen      []string      `json:"documents_seen"`
}

type Assets struct {
	DownPaymentAmount UnknownNumber `json:"down_payment_amount"`
	ReservesMonths    UnknownNumber `json:"reserves_months"`
	GiftFunds         GiftFunds     `json:"gift_funds"`
	GiftAmount        UnknownNumber `json:"gift_amount"`
}

type Liabilities struct {
	MonthlyDebtsTotal       UnknownNumber `json:"monthly_debts_total"`
	CurrentHousingPayment   UnknownNumber `json:"current_housing_payment"`
	FutureHousingPaymentEst UnknownNumber `json:"future_housing_payment_est"`
	Notes                   string        `json:"notes"`
}

type Property struct {
	PurchasePrice  UnknownNumber `json:"purchase_price"`
	EstimatedValue UnknownNumber `json:"estimated_value"`
	LoanAmount     UnknownNumber `json:"loan_amount"`
	HOADuesMonthly UnknownNumber `json:"hoa_dues_monthly"`
}

// Calculations are server-computed ratios; the client only displays them.
type Calculations struct {
	LTV      UnknownNumber     `json:"ltv"`
	FrontDTI UnknownNumber     `json:"front_dti"`
	BackDTI  UnknownNumber     `json:"back_dti"`
	Math     *CalculationsMath `json:"math,omitempty"`
}

type CalculationsMath struct {
	LTV      string `json:"ltv,omitempty"`
	FrontDTI string `json:"front_dti,omitempty"`
	BackDTI  string `json:"back_dti,omitempty"`
}

type RiskFlag struct {
	Code     string       `json:"code"`
	Severity RiskSeverity `json:"severity"`
	Details  string       `json:"details"`
}

// Copilot holds AI-assistance output, server-computed and read-only here.
type Copilot struct {
	SuggestedDirections []SuggestedDirection `json:"suggested_directions"`
	QuestionsToAskNext  []string             `json:"questions_to_ask_next"`
	DocChecklist        []string             `json:"doc_checklist"`
	GuidelineCitations  []GuidelineCitation  `json:"guideline_citations"`
}

type SuggestedDirection struct {
	Option     string   `json:"option"`
	Confidence float64  `json:"confidence"`
	Why        []string `json:"why"`
}

type GuidelineCitation struct {
	DocID               string     `json:"doc_id"`
	Section             string     `json:"section"`
	Quote               string     `json:"quote"`
	RetrievalConfidence float64    `json:"retrieval_confidence"`
	RetrieverBackend    string     `json:"retriever_backend,omitempty"`
	SnippetHash         string     `json:"snippet_hash,omitempty"`
	RetrievedAt         *time.Time `json:"retrieved_at,omitempty"`
}

type HumanDecision struct {
	SelectedPath string `json:"selected_path"`
	Notes        string `json:"notes"`
}

type Outcome struct {
	AUS           OutcomeAUS  `json:"aus"`
	Decision      OutcomeCall `json:"decision"`
	Conditions    []string    `json:"conditions"`
	DenialReasons []string    `json:"denial_reasons"`
	FinalLender   string      `json:"final_lender"`
	ClosedDate    *time.Time  `json:"closed_date"`
}

func normalizeStatus(v CaseStatus) CaseStatus {
	switch v {
	case StatusIntake, StatusSubmitted, StatusApproved, StatusDenied, StatusWithdrawn, StatusStalled:
		return v
	default:
		return StatusIntake
	}
}

func normalizeRole(v UserRole) UserRole {
	switch v {
	case RoleBroker, RoleMLO, RoleAssistant:
		return v
	default:
		return RoleBroker
	}
}

func normalizePurpose(v DealPurpose) DealPurpose {
	switch v {
	case PurposePurchase, PurposeRefi, PurposeCashOut:
		return v
	default:
		return PurposePurchase
	}
}

func normalizeOccupancy(v Occupancy) Occupancy {
	switch v {
	case OccupancyPrimary, OccupancySecond, OccupancyInvestment:
		return v
	default:
		return OccupancyPrimary
	}
}

func normalizePropertyType(v PropertyType) PropertyType {
	switch v {
	case PropertySFR, PropertyCondo, PropertyTownhome, PropertyTwoToFour, PropertyManufactured, PropertyOther:
		return v
	default:
		return PropertySFR
	}
}

func normalizeCitizenship(v Citizenship) Citizenship {
	switch v {
	case CitizenshipUSCitizen, CitizenshipPermanentResident, CitizenshipNonPermanentResident, CitizenshipUnknown:
		return v
	default:
		return CitizenshipUnknown
	}
}

func normalizeIncomeType(v IncomeType) IncomeType {
	switch v {
	case IncomeW2, Income1099, IncomeSelfEmployed, IncomeRetired, IncomeMixed, IncomeUnknown:
		return v
	default:
		return IncomeUnknown
	}
}

func normalizeAUS(v OutcomeAUS) OutcomeAUS {
	switch v {
	case AUSApprove, AUSEligible, AUSRefer, AUSIneligible, AUSUnknown:
		return v
	default:
		return AUSUnknown
	}
}

func normalizeDecision(v OutcomeCall) OutcomeCall {
	switch v {
	case DecisionApproved, DecisionDenied, DecisionPending, DecisionUnknown:
		return v
	default:
		return DecisionUnknown
	}
}

func normalizeLender(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return LenderUnknown
	}
	return trimmed
}

func ensureStringSlice(value []string) []string {
	if value == nil {
		return []string{}
	}
	return value
}
