package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
)

type Employee struct {
	ID                    string
	CompanyID             string
	UserID                *string
	ManagerUserID         *string
	EmployeeCode          string
	FullName              string
	Email                 string
	CompensationType      CompensationType
	AnnualSalary          *money.Cents
	HourlyRate            *money.Cents
	NonExempt             bool
	FilingStatus          FilingStatus
	Allowances            int
	AdditionalWithholding money.Cents
	WorkState             string
	Status                EmploymentStatus
	HireDate              time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type CompensationType string

const (
	CompensationSalary CompensationType = "salary"
	CompensationHourly CompensationType = "hourly"
)

type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarried         FilingStatus = "married"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

func (f FilingStatus) IsValid() bool {
	switch f {
	case FilingSingle, FilingMarried, FilingHeadOfHousehold:
		return true
	}
	return false
}

type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "active"
	StatusInactive   EmploymentStatus = "inactive"
	StatusOnboarding EmploymentStatus = "onboarding"
)

func (s EmploymentStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnboarding:
		return true
	}
	return false
}

// CheckCompensation enforces that exactly one of salary and hourly rate is set,
// matching the compensation type.
func (e Employee) CheckCompensation() error {
	switch e.CompensationType {
	case CompensationSalary:
		if e.AnnualSalary == nil || e.HourlyRate != nil {
			return ErrInvalidCompensationTerms
		}
		if *e.AnnualSalary <= 0 {
			return ErrInvalidCompensationTerms
		}
	case CompensationHourly:
		if e.HourlyRate == nil || e.AnnualSalary != nil {
			return ErrInvalidCompensationTerms
		}
		if *e.HourlyRate <= 0 {
			return ErrInvalidCompensationTerms
		}
	default:
		return ErrInvalidCompensationTerms
	}
	if e.Allowances < 0 || e.AdditionalWithholding < 0 {
		return ErrInvalidCompensationTerms
	}
	return nil
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
