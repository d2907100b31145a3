package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PayPeriodStart string `json:"pay_period_start"`
	PayPeriodEnd   string `json:"pay_period_end"`
	PayDate        string `json:"pay_date"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PayPeriodStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_start", Message: "pay_period_start must be in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(r.PayPeriodEnd); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_period_end", Message: "pay_period_end must be in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(r.PayDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period parses the dates and enforces start <= end <= pay date.
func (r *CreateRunRequest) Period() (start, end, payDate time.Time, err error) {
	start, _ = validator.IsValidDate(r.PayPeriodStart)
	end, _ = validator.IsValidDate(r.PayPeriodEnd)
	payDate, _ = validator.IsValidDate(r.PayDate)
	if end.Before(start) || payDate.Before(end) {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return start, end, payDate, nil
}

type RunFilter struct {
	Status *string
	Page   int
	Limit  int
}

func (f *RunFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type HoursResponse struct {
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
	Holiday  decimal.Decimal `json:"holiday"`
}

type WithholdingResponse struct {
	Federal         money.Cents `json:"federal"`
	State           money.Cents `json:"state"`
	SocialSecurity  money.Cents `json:"social_security"`
	Medicare        money.Cents `json:"medicare"`
	OtherDeductions money.Cents `json:"other_deductions"`
	Total           money.Cents `json:"total"`
}

type CompensationResponse struct {
	CompensationType      string       `json:"compensation_type"`
	AnnualSalary          *money.Cents `json:"annual_salary,omitempty"`
	HourlyRate            *money.Cents `json:"hourly_rate,omitempty"`
	NonExempt             bool         `json:"non_exempt"`
	FilingStatus          string       `json:"filing_status"`
	Allowances            int          `json:"allowances"`
	AdditionalWithholding money.Cents  `json:"additional_withholding"`
	WorkState             string       `json:"work_state"`
	PeriodsPerYear        int          `json:"periods_per_year"`
}

type LineItemResponse struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Hours        HoursResponse        `json:"hours"`
	Compensation CompensationResponse `json:"compensation"`
	GrossPay     money.Cents          `json:"gross_pay"`
	Withholding  WithholdingResponse  `json:"withholding"`
	NetPay       money.Cents          `json:"net_pay"`
	TimesheetIDs []string             `json:"timesheet_ids"`
	TaxYear      int                  `json:"tax_year"`
}

func NewLineItemResponse(li LineItem) LineItemResponse {
	return LineItemResponse{
		EmployeeID:   li.EmployeeID,
		EmployeeName: li.EmployeeName,
		Hours: HoursResponse{
			Regular:  li.Hours.Regular,
			Overtime: li.Hours.Overtime,
			Holiday:  li.Hours.Holiday,
		},
		Compensation: CompensationResponse{
			CompensationType:      string(li.Compensation.CompensationType),
			AnnualSalary:          li.Compensation.AnnualSalary,
			HourlyRate:            li.Compensation.HourlyRate,
			NonExempt:             li.Compensation.NonExempt,
			FilingStatus:          string(li.Compensation.FilingStatus),
			Allowances:            li.Compensation.Allowances,
			AdditionalWithholding: li.Compensation.AdditionalWithholding,
			WorkState:             li.Compensation.WorkState,
			PeriodsPerYear:        li.Compensation.PeriodsPerYear,
		},
		GrossPay: li.GrossPay,
		Withholding: WithholdingResponse{
			Federal:         li.Withholding.Federal,
			State:           li.Withholding.State,
			SocialSecurity:  li.Withholding.SocialSecurity,
			Medicare:        li.Withholding.Medicare,
			OtherDeductions: li.Withholding.OtherDeductions,
			Total:           li.Withholding.Total(),
		},
		NetPay:       li.NetPay,
		TimesheetIDs: li.TimesheetIDs,
		TaxYear:      li.TaxYear,
	}
}

type ExclusionResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
	Detail       string `json:"detail,omitempty"`
}

type RunTotalsResponse struct {
	GrossPay        money.Cents `json:"gross_pay"`
	Federal         money.Cents `json:"federal"`
	State           money.Cents `json:"state"`
	SocialSecurity  money.Cents `json:"social_security"`
	Medicare        money.Cents `json:"medicare"`
	OtherDeductions money.Cents `json:"other_deductions"`
	NetPay          money.Cents `json:"net_pay"`
	EmployeeCount   int         `json:"employee_count"`
	ExcludedCount   int         `json:"excluded_count"`
}

type RunResponse struct {
	ID             string              `json:"id"`
	PayPeriodStart string              `json:"pay_period_start"`
	PayPeriodEnd   string              `json:"pay_period_end"`
	PayDate        string              `json:"pay_date"`
	Status         string              `json:"status"`
	LineItems      []LineItemResponse  `json:"line_items"`
	Excluded       []ExclusionResponse `json:"excluded"`
	Totals         RunTotalsResponse   `json:"totals"`
	CreatedBy      string              `json:"created_by"`
	CalculatedAt   *time.Time          `json:"calculated_at,omitempty"`
	CommittedAt    *time.Time          `json:"committed_at,omitempty"`
	CommittedBy    *string             `json:"committed_by,omitempty"`
	CanceledAt     *time.Time          `json:"canceled_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func NewRunResponse(r Run) RunResponse {
	lineItems := make([]LineItemResponse, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		lineItems = append(lineItems, NewLineItemResponse(li))
	}
	excluded := make([]ExclusionResponse, 0, len(r.Excluded))
	for _, ex := range r.Excluded {
		excluded = append(excluded, ExclusionResponse{
			EmployeeID:   ex.EmployeeID,
			EmployeeName: ex.EmployeeName,
			Reason:       string(ex.Reason),
			Detail:       ex.Detail,
		})
	}

	return RunResponse{
		ID:             r.ID,
		PayPeriodStart: r.PayPeriodStart.Format(dateLayout),
		PayPeriodEnd:   r.PayPeriodEnd.Format(dateLayout),
		PayDate:        r.PayDate.Format(dateLayout),
		Status:         string(r.Status),
		LineItems:      lineItems,
		Excluded:       excluded,
		Totals: RunTotalsResponse{
			GrossPay:        r.Totals.GrossPay,
			Federal:         r.Totals.Federal,
			State:           r.Totals.State,
			SocialSecurity:  r.Totals.SocialSecurity,
			Medicare:        r.Totals.Medicare,
			OtherDeductions: r.Totals.OtherDeductions,
			NetPay:          r.Totals.NetPay,
			EmployeeCount:   r.Totals.EmployeeCount,
			ExcludedCount:   r.Totals.ExcludedCount,
		},
		CreatedBy:    r.CreatedBy,
		CalculatedAt: r.CalculatedAt,
		CommittedAt:  r.CommittedAt,
		CommittedBy:  r.CommittedBy,
		CanceledAt:   r.CanceledAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type ListRunResponse struct {
	Runs       []RunResponse `json:"runs"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

// ========== PAYSLIP DTOs ==========

type PayslipSummary struct {
	RunID          string      `json:"run_id"`
	EmployeeID     string      `json:"employee_id"`
	EmployeeName   string      `json:"employee_name"`
	PayPeriodStart time.Time   `json:"pay_period_start"`
	PayPeriodEnd   time.Time   `json:"pay_period_end"`
	PayDate        time.Time   `json:"pay_date"`
	GrossPay       money.Cents `json:"gross_pay"`
	NetPay         money.Cents `json:"net_pay"`
}

type PayslipResponse struct {
	RunID          string           `json:"run_id"`
	PayPeriodStart string           `json:"pay_period_start"`
	PayPeriodEnd   string           `json:"pay_period_end"`
	PayDate        string           `json:"pay_date"`
	LineItem       LineItemResponse `json:"line_item"`
}

type PayslipFileResponse struct {
	RunID      string `json:"run_id"`
	EmployeeID string `json:"employee_id"`
	Path       string `json:"path"`
	URL        string `json:"url"`
}
