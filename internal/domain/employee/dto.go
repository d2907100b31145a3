package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	UserID                *string      `json:"user_id,omitempty"`
	ManagerUserID         *string      `json:"manager_user_id,omitempty"`
	EmployeeCode          string       `json:"employee_code"`
	FullName              string       `json:"full_name"`
	Email                 string       `json:"email"`
	CompensationType      string       `json:"compensation_type"`
	AnnualSalary          *money.Cents `json:"annual_salary,omitempty"`
	HourlyRate            *money.Cents `json:"hourly_rate,omitempty"`
	NonExempt             bool         `json:"non_exempt"`
	FilingStatus          string       `json:"filing_status"`
	Allowances            int          `json:"allowances"`
	AdditionalWithholding money.Cents  `json:"additional_withholding"`
	WorkState             string       `json:"work_state"`
	Status                string       `json:"status,omitempty"`
	HireDate              string       `json:"hire_date"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "employee_code is required"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full_name is required"})
	} else if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full_name must not exceed 255 characters"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Status != "" && !EmploymentStatus(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active, inactive or onboarding"})
	}
	if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "hire_date", Message: "hire_date must be in YYYY-MM-DD format"})
	}

	errs = append(errs, validateTerms(
		r.CompensationType, r.AnnualSalary, r.HourlyRate,
		r.FilingStatus, r.Allowances, r.AdditionalWithholding, r.WorkState,
	)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntity assumes Validate has passed.
func (r *CreateEmployeeRequest) ToEntity(companyID string) Employee {
	hireDate, _ := validator.IsValidDate(r.HireDate)
	status := StatusOnboarding
	if r.Status != "" {
		status = EmploymentStatus(r.Status)
	}
	return Employee{
		CompanyID:             companyID,
		UserID:                r.UserID,
		ManagerUserID:         r.ManagerUserID,
		EmployeeCode:          strings.TrimSpace(r.EmployeeCode),
		FullName:              strings.TrimSpace(r.FullName),
		Email:                 strings.ToLower(strings.TrimSpace(r.Email)),
		CompensationType:      CompensationType(r.CompensationType),
		AnnualSalary:          r.AnnualSalary,
		HourlyRate:            r.HourlyRate,
		NonExempt:             r.NonExempt,
		FilingStatus:          FilingStatus(r.FilingStatus),
		Allowances:            r.Allowances,
		AdditionalWithholding: r.AdditionalWithholding,
		WorkState:             strings.ToUpper(r.WorkState),
		Status:                status,
		HireDate:              hireDate,
	}
}

// UpdateEmployeeRequest replaces the compensation terms as a whole, so the salary/rate invariant
// is checked against the new values only.
type UpdateEmployeeRequest struct {
	ID                    string       `json:"-"`
	ManagerUserID         *string      `json:"manager_user_id,omitempty"`
	FullName              *string      `json:"full_name,omitempty"`
	Email                 *string      `json:"email,omitempty"`
	CompensationType      string       `json:"compensation_type"`
	AnnualSalary          *money.Cents `json:"annual_salary,omitempty"`
	HourlyRate            *money.Cents `json:"hourly_rate,omitempty"`
	NonExempt             bool         `json:"non_exempt"`
	FilingStatus          string       `json:"filing_status"`
	Allowances            int          `json:"allowances"`
	AdditionalWithholding money.Cents  `json:"additional_withholding"`
	WorkState             string       `json:"work_state"`
	Status                *string      `json:"status,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full_name must not be empty"})
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Status != nil && !EmploymentStatus(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active, inactive or onboarding"})
	}

	errs = append(errs, validateTerms(
		r.CompensationType, r.AnnualSalary, r.HourlyRate,
		r.FilingStatus, r.Allowances, r.AdditionalWithholding, r.WorkState,
	)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the request onto an existing record.
func (r *UpdateEmployeeRequest) Apply(e Employee) Employee {
	if r.ManagerUserID != nil {
		e.ManagerUserID = r.ManagerUserID
	}
	if r.FullName != nil {
		e.FullName = strings.TrimSpace(*r.FullName)
	}
	if r.Email != nil {
		e.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Status != nil {
		e.Status = EmploymentStatus(*r.Status)
	}
	e.CompensationType = CompensationType(r.CompensationType)
	e.AnnualSalary = r.AnnualSalary
	e.HourlyRate = r.HourlyRate
	e.NonExempt = r.NonExempt
	e.FilingStatus = FilingStatus(r.FilingStatus)
	e.Allowances = r.Allowances
	e.AdditionalWithholding = r.AdditionalWithholding
	e.WorkState = strings.ToUpper(r.WorkState)
	return e
}

func validateTerms(
	compensationType string,
	annualSalary, hourlyRate *money.Cents,
	filingStatus string,
	allowances int,
	additional money.Cents,
	workState string,
) validator.ValidationErrors {
	var errs validator.ValidationErrors

	switch CompensationType(compensationType) {
	case CompensationSalary:
		if annualSalary == nil {
			errs = append(errs, validator.ValidationError{Field: "annual_salary", Message: "annual_salary is required for salary compensation"})
		} else if *annualSalary <= 0 {
			errs = append(errs, validator.ValidationError{Field: "annual_salary", Message: "annual_salary must be positive"})
		}
		if hourlyRate != nil {
			errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "hourly_rate must not be set for salary compensation"})
		}
	case CompensationHourly:
		if hourlyRate == nil {
			errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "hourly_rate is required for hourly compensation"})
		} else if *hourlyRate <= 0 {
			errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "hourly_rate must be positive"})
		}
		if annualSalary != nil {
			errs = append(errs, validator.ValidationError{Field: "annual_salary", Message: "annual_salary must not be set for hourly compensation"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "compensation_type", Message: "compensation_type must be salary or hourly"})
	}

	if !FilingStatus(filingStatus).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "filing_status", Message: "filing_status must be single, married or head_of_household"})
	}
	if allowances < 0 {
		errs = append(errs, validator.ValidationError{Field: "allowances", Message: "allowances must be non-negative"})
	}
	if additional.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "additional_withholding", Message: "additional_withholding must be non-negative"})
	}
	if !validator.IsValidStateCode(workState) {
		errs = append(errs, validator.ValidationError{Field: "work_state", Message: "work_state must be a two-letter state code"})
	}

	return errs
}

type EmployeeFilter struct {
	Status *string
	Search *string
	Page   int
	Limit  int
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type EmployeeResponse struct {
	ID                    string       `json:"id"`
	UserID                *string      `json:"user_id,omitempty"`
	ManagerUserID         *string      `json:"manager_user_id,omitempty"`
	EmployeeCode          string       `json:"employee_code"`
	FullName              string       `json:"full_name"`
	Email                 string       `json:"email"`
	CompensationType      string       `json:"compensation_type"`
	AnnualSalary          *money.Cents `json:"annual_salary,omitempty"`
	HourlyRate            *money.Cents `json:"hourly_rate,omitempty"`
	NonExempt             bool         `json:"non_exempt"`
	FilingStatus          string       `json:"filing_status"`
	Allowances            int          `json:"allowances"`
	AdditionalWithholding money.Cents  `json:"additional_withholding"`
	WorkState             string       `json:"work_state"`
	Status                string       `json:"status"`
	HireDate              string       `json:"hire_date"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                    e.ID,
		UserID:                e.UserID,
		ManagerUserID:         e.ManagerUserID,
		EmployeeCode:          e.EmployeeCode,
		FullName:              e.FullName,
		Email:                 e.Email,
		CompensationType:      string(e.CompensationType),
		AnnualSalary:          e.AnnualSalary,
		HourlyRate:            e.HourlyRate,
		NonExempt:             e.NonExempt,
		FilingStatus:          string(e.FilingStatus),
		Allowances:            e.Allowances,
		AdditionalWithholding: e.AdditionalWithholding,
		WorkState:             e.WorkState,
		Status:                string(e.Status),
		HireDate:              e.HireDate.Format("2006-01-02"),
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}
