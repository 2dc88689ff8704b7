package cases

import (
	"strconv"
	"strings"
	"time"
)

// FormState is the flat, all-strings editable representation served to the
// intake form. Every numeric field is editable text where "" means Unknown;
// enums carry their wire literals so a thin UI can bind selects directly.
type FormState struct {
	Deal          DealForm          `json:"deal"`
	Borrowers     []BorrowerForm    `json:"borrowers"`
	Income        IncomeForm        `json:"income"`
	Assets        AssetsForm        `json:"assets"`
	Liabilities   LiabilitiesForm   `json:"liabilities"`
	Property      PropertyForm      `json:"property"`
	HumanDecision HumanDecisionForm `json:"human_decision"`
}

type DealForm struct {
	Purpose         string `json:"purpose"`
	Occupancy       string `json:"occupancy"`
	PropertyType    string `json:"property_type"`
	State           string `json:"state"`
	TargetCloseDays string `json:"target_close_days"`
}

type BorrowerForm struct {
	BorrowerID     string         `json:"borrower_id"`
	IsPrimary      bool           `json:"is_primary"`
	CreditScoreMid string         `json:"credit_score_mid"`
	Citizenship    string         `json:"citizenship"`
	Employment     EmploymentForm `json:"employment"`
}

type EmploymentForm struct {
	IncomeType             string `json:"income_type"`
	JobTimeMonths          string `json:"job_time_months"`
	SelfEmployedTimeMonths string `json:"self_employed_time_months"`
}

type IncomeForm struct {
	MonthlyGrossIncome string   `json:"monthly_gross_income"`
	IncomeNotes        string   `json:"income_notes"`
	DocumentsSeen      []string `json:"documents_seen"`
}

type AssetsForm struct {
	DownPaymentAmount string `json:"down_payment_amount"`
	ReservesMonths    string `json:"reserves_months"`
	GiftFunds         string `json:"gift_funds"`
	GiftAmount        string `json:"gift_amount"`
}

type LiabilitiesForm struct {
	MonthlyDebtsTotal       string `json:"monthly_debts_total"`
	CurrentHousingPayment   string `json:"current_housing_payment"`
	FutureHousingPaymentEst string `json:"future_housing_payment_est"`
	Notes                   string `json:"notes"`
}

type PropertyForm struct {
	PurchasePrice  string `json:"purchase_price"`
	EstimatedValue string `json:"estimated_value"`
	LoanAmount     string `json:"loan_amount"`
	HOADuesMonthly string `json:"hoa_dues_monthly"`
}

type HumanDecisionForm struct {
	SelectedPath string `json:"selected_path"`
	Notes        string `json:"notes"`
}

// OutcomeForm is the editable shape of the outcome section, which is saved
// through its own endpoint. final_lender uses the literal "unknown" string
// sentinel; closed_date is a bare calendar date or "".
type OutcomeForm struct {
	AUS           string   `json:"aus"`
	Decision      string   `json:"decision"`
	Conditions    []string `json:"conditions"`
	DenialReasons []string `json:"denial_reasons"`
	FinalLender   string   `json:"final_lender"`
	ClosedDate    string   `json:"closed_date"`
}

const closedDateLayout = "2006-01-02"

// ToFormState converts a typed record into editable form state. Borrower
// normalization runs on every load because the backend is not trusted to
// satisfy the primary-borrower invariant.
func ToFormState(c Case) FormState {
	borrowers := NormalizeBorrowers(c.Borrowers)
	borrowerForms := make([]BorrowerForm, 0, len(borrowers))
	for _, b := range borrowers {
		borrowerForms = append(borrowerForms, BorrowerForm{
			BorrowerID:     b.BorrowerID,
			IsPrimary:      b.IsPrimary,
			CreditScoreMid: b.CreditScoreMid.EditableText(),
			Citizenship:    string(normalizeCitizenship(b.Citizenship)),
			Employment: EmploymentForm{
				IncomeType:             string(normalizeIncomeType(b.Employment.IncomeType)),
				JobTimeMonths:          b.Employment.JobTimeMonths.EditableText(),
				SelfEmployedTimeMonths: b.Employment.SelfEmployedTimeMonths.EditableText(),
			},
		})
	}

	state := strings.ToUpper(strings.TrimSpace(c.Deal.State))
	if state == "" {
		state = defaultState
	}
	targetClose := c.Deal.TargetCloseDays
	if targetClose <= 0 {
		targetClose = defaultTargetCloseDays
	}

	return FormState{
		Deal: DealForm{
			Purpose:         string(normalizePurpose(c.Deal.Purpose)),
			Occupancy:       string(normalizeOccupancy(c.Deal.Occupancy)),
			PropertyType:    string(normalizePropertyType(c.Deal.PropertyType)),
			State:           state,
			TargetCloseDays: strconv.Itoa(targetClose),
		},
		Borrowers: borrowerForms,
		Income: IncomeForm{
			MonthlyGrossIncome: c.Income.MonthlyGrossIncome.EditableText(),
			IncomeNotes:        c.Income.IncomeNotes,
			DocumentsSeen:      ensureStringSlice(c.Income.DocumentsSeen),
		},
		Assets: AssetsForm{
			DownPaymentAmount: c.Assets.DownPaymentAmount.EditableText(),
			ReservesMonths:    c.Assets.ReservesMonths.EditableText(),
			GiftFunds:         c.Assets.GiftFunds.EditableText(),
			GiftAmount:        c.Assets.GiftAmount.EditableText(),
		},
		Liabilities: LiabilitiesForm{
			MonthlyDebtsTotal:       c.Liabilities.MonthlyDebtsTotal.EditableText(),
			CurrentHousingPayment:   c.Liabilities.CurrentHousingPayment.EditableText(),
			FutureHousingPaymentEst: c.Liabilities.FutureHousingPaymentEst.EditableText(),
			Notes:                   c.Liabilities.Notes,
		},
		Property: PropertyForm{
			PurchasePrice:  c.Property.PurchasePrice.EditableText(),
			EstimatedValue: c.Property.EstimatedValue.EditableText(),
			LoanAmount:     c.Property.LoanAmount.EditableText(),
			HOADuesMonthly: c.Property.HOADuesMonthly.EditableText(),
		},
		HumanDecision: HumanDecisionForm{
			SelectedPath: c.HumanDecision.SelectedPath,
			Notes:        c.HumanDecision.Notes,
		},
	}
}

// MergeFormState writes the form-editable sections back onto an existing
// record, leaving server-owned sections (status, calculations, risk flags,
// copilot) untouched. The persisted shape is always the full object, so the
// result is what goes on the wire.
func MergeFormState(c Case, f FormState) Case {
	borrowers := make([]Borrower, 0, len(f.Borrowers))
	for _, b := range f.Borrowers {
		id := strings.TrimSpace(b.BorrowerID)
		record := Borrower{
			BorrowerID:     id,
			IsPrimary:      b.IsPrimary,
			CreditScoreMid: UnknownNumberFromText(b.CreditScoreMid),
			Citizenship:    normalizeCitizenship(Citizenship(b.Citizenship)),
			Employment: Employment{
				IncomeType:             normalizeIncomeType(IncomeType(b.Employment.IncomeType)),
				JobTimeMonths:          UnknownNumberFromText(b.Employment.JobTimeMonths),
				SelfEmployedTimeMonths: UnknownNumberFromText(b.Employment.SelfEmployedTimeMonths),
			},
		}
		borrowers = append(borrowers, record)
	}

	c.Deal = Deal{
		Purpose:         normalizePurpose(DealPurpose(f.Deal.Purpose)),
		Occupancy:       normalizeOccupancy(Occupancy(f.Deal.Occupancy)),
		PropertyType:    normalizePropertyType(PropertyType(f.Deal.PropertyType)),
		State:           strings.ToUpper(strings.TrimSpace(f.Deal.State)),
		TargetCloseDays: parseTargetCloseDays(f.Deal.TargetCloseDays),
	}
	c.Borrowers = NormalizeBorrowers(borrowers)
	c.Income = Income{
		MonthlyGrossIncome: UnknownNumberFromText(f.Income.MonthlyGrossIncome),
		IncomeNotes:        f.Income.IncomeNotes,
		DocumentsSeen:      ensureStringSlice(f.Income.DocumentsSeen),
	}
	c.Assets = Assets{
		DownPaymentAmount: UnknownNumberFromText(f.Assets.DownPaymentAmount),
		ReservesMonths:    UnknownNumberFromText(f.Assets.ReservesMonths),
		GiftFunds:         GiftFundsFromText(f.Assets.GiftFunds),
		GiftAmount:        UnknownNumberFromText(f.Assets.GiftAmount),
	}
	c.Liabilities = Liabilities{
		MonthlyDebtsTotal:       UnknownNumberFromText(f.Liabilities.MonthlyDebtsTotal),
		CurrentHousingPayment:   UnknownNumberFromText(f.Liabilities.CurrentHousingPayment),
		FutureHousingPaymentEst: UnknownNumberFromText(f.Liabilities.FutureHousingPaymentEst),
		Notes:                   f.Liabilities.Notes,
	}
	c.Property = Property{
		PurchasePrice:  UnknownNumberFromText(f.Property.PurchasePrice),
		EstimatedValue: UnknownNumberFromText(f.Property.EstimatedValue),
		LoanAmount:     UnknownNumberFromText(f.Property.LoanAmount),
		HOADuesMonthly: UnknownNumberFromText(f.Property.HOADuesMonthly),
	}
	c.HumanDecision = HumanDecision{
		SelectedPath: f.HumanDecision.SelectedPath,
		Notes:        f.HumanDecision.Notes,
	}
	return c
}

// ToOutcomeForm converts the outcome section for editing. The "unknown"
// lender sentinel renders as an empty input.
func ToOutcomeForm(o Outcome) OutcomeForm {
	lender := o.FinalLender
	if lender == LenderUnknown {
		lender = ""
	}
	closed := ""
	if o.ClosedDate != nil {
		closed = o.ClosedDate.UTC().Format(closedDateLayout)
	}
	return OutcomeForm{
		AUS:           string(normalizeAUS(o.AUS)),
		Decision:      string(normalizeDecision(o.Decision)),
		Conditions:    ensureStringSlice(o.Conditions),
		DenialReasons: ensureStringSlice(o.DenialReasons),
		FinalLender:   lender,
		ClosedDate:    closed,
	}
}

// OutcomeFromForm is the inverse conversion: a blank lender persists as the
// "unknown" string sentinel, a blank date as null (not a sentinel string),
// and a filled date as a UTC start-of-day timestamp.
func OutcomeFromForm(f OutcomeForm) Outcome {
	var closed *time.Time
	if trimmed := strings.TrimSpace(f.ClosedDate); trimmed != "" {
		if parsed, err := time.ParseInLocation(closedDateLayout, trimmed, time.UTC); err == nil {
			closed = &parsed
		}
	}
	return Outcome{
		AUS:           normalizeAUS(OutcomeAUS(f.AUS)),
		Decision:      normalizeDecision(OutcomeCall(f.Decision)),
		Conditions:    ensureStringSlice(f.Conditions),
		DenialReasons: ensureStringSlice(f.DenialReasons),
		FinalLender:   normalizeLender(f.FinalLender),
		ClosedDate:    closed,
	}
}

func parseTargetCloseDays(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return defaultTargetCloseDays
	}
	return n
}
