package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusSetup      RunStatus = "setup"
	RunStatusCalculated RunStatus = "calculated"
	RunStatusCommitted  RunStatus = "committed"
	RunStatusCanceled   RunStatus = "canceled"
)

func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusSetup, RunStatusCalculated, RunStatusCommitted, RunStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCommitted || s == RunStatusCanceled
}

type PayFrequency string

const (
	PayWeekly      PayFrequency = "weekly"
	PayBiweekly    PayFrequency = "biweekly"
	PaySemimonthly PayFrequency = "semimonthly"
	PayMonthly     PayFrequency = "monthly"
)

// PeriodsPerYear returns 0 for unknown frequencies.
func (f PayFrequency) PeriodsPerYear() int {
	switch f {
	case PayWeekly:
		return 52
	case PayBiweekly:
		return 26
	case PaySemimonthly:
		return 24
	case PayMonthly:
		return 12
	}
	return 0
}

type HoursBreakdown struct {
	Regular  decimal.Decimal
	Overtime decimal.Decimal
	Holiday  decimal.Decimal
}

func (h HoursBreakdown) Add(o HoursBreakdown) HoursBreakdown {
	return HoursBreakdown{
		Regular:  h.Regular.Add(o.Regular),
		Overtime: h.Overtime.Add(o.Overtime),
		Holiday:  h.Holiday.Add(o.Holiday),
	}
}

// ReclassifyOvertime moves regular hours above limit into overtime. It applies to a
// single week of hours.
func (h HoursBreakdown) ReclassifyOvertime(limit decimal.Decimal) HoursBreakdown {
	if h.Regular.LessThanOrEqual(limit) {
		return h
	}
	excess := h.Regular.Sub(limit)
	return HoursBreakdown{
		Regular:  limit,
		Overtime: h.Overtime.Add(excess),
		Holiday:  h.Holiday,
	}
}

func (h HoursBreakdown) HasNegative() bool {
	return h.Regular.IsNegative() || h.Overtime.IsNegative() || h.Holiday.IsNegative()
}

type Withholding struct {
	Federal         money.Cents
	State           money.Cents
	SocialSecurity  money.Cents
	Medicare        money.Cents
	OtherDeductions money.Cents
}

func (w Withholding) Total() money.Cents {
	return money.Sum(w.Federal, w.State, w.SocialSecurity, w.Medicare, w.OtherDeductions)
}

// FICA is social security plus medicare.
func (w Withholding) FICA() money.Cents {
	return w.SocialSecurity + w.Medicare
}

// CompensationSnapshot freezes the terms a line item was calculated with.
type CompensationSnapshot struct {
	CompensationType      employee.CompensationType
	AnnualSalary          *money.Cents
	HourlyRate            *money.Cents
	NonExempt             bool
	FilingStatus          employee.FilingStatus
	Allowances            int
	AdditionalWithholding money.Cents
	WorkState             string
	PeriodsPerYear        int
}

type LineItem struct {
	ID           string
	RunID        string
	EmployeeID   string
	EmployeeName string
	Hours        HoursBreakdown
	Compensation CompensationSnapshot
	GrossPay     money.Cents
	Withholding  Withholding
	NetPay       money.Cents
	TimesheetIDs []string
	TaxYear      int
	CreatedAt    time.Time
}

type ExclusionReason string

const (
	ExcludedNoApprovedTimesheet ExclusionReason = "no approved timesheet"
	ExcludedTaxLookupFailed     ExclusionReason = "tax lookup failed"
	ExcludedInvalidCompensation ExclusionReason = "invalid compensation state"
)

type Exclusion struct {
	EmployeeID   string
	EmployeeName string
	Reason       ExclusionReason
	Detail       string
}

type RunTotals struct {
	GrossPay        money.Cents
	Federal         money.Cents
	State           money.Cents
	SocialSecurity  money.Cents
	Medicare        money.Cents
	OtherDeductions money.Cents
	NetPay          money.Cents
	EmployeeCount   int
	ExcludedCount   int
}

type Run struct {
	ID             string
	CompanyID      string
	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	PayDate        time.Time
	Status         RunStatus
	LineItems      []LineItem
	Excluded       []Exclusion
	Totals         RunTotals
	CreatedBy      string
	CalculatedAt   *time.Time
	CommittedAt    *time.Time
	CommittedBy    *string
	CanceledAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Aggregate recomputes run totals from line items and exclusions.
func (r *Run) Aggregate() {
	totals := RunTotals{
		EmployeeCount: len(r.LineItems),
		ExcludedCount: len(r.Excluded),
	}
	for _, li := range r.LineItems {
		totals.GrossPay += li.GrossPay
		totals.Federal += li.Withholding.Federal
		totals.State += li.Withholding.State
		totals.SocialSecurity += li.Withholding.SocialSecurity
		totals.Medicare += li.Withholding.Medicare
		totals.OtherDeductions += li.Withholding.OtherDeductions
		totals.NetPay += li.NetPay
	}
	r.Totals = totals
}

// TimesheetIDs lists every timesheet consumed by the run's line items.
func (r Run) TimesheetIDs() []string {
	var ids []string
	for _, li := range r.LineItems {
		ids = append(ids, li.TimesheetIDs...)
	}
	return ids
}

func (r Run) LineItemFor(employeeID string) (LineItem, bool) {
	for _, li := range r.LineItems {
		if li.EmployeeID == employeeID {
			return li, true
		}
	}
	return LineItem{}, false
}
