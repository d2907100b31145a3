package fixtures

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

func centsPtr(c int64) *money.Cents { p := money.Cents(c); return &p }

// SeededDataIDs holds IDs of the seeded demo data for a company
type SeededDataIDs struct {
	// Employee IDs by employee code, e.g. "E001" -> "uuid"
	EmployeeIDs map[string]string

	// Approved timesheet IDs by employee code
	TimesheetIDs map[string]string
}

func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		EmployeeIDs:  make(map[string]string),
		TimesheetIDs: make(map[string]string),
	}
}

// ==========================================
// DEMO EMPLOYEES
// ==========================================

// GetDemoEmployees returns a small roster covering every compensation shape:
// hourly, exempt salary, non-exempt salary and one inactive record.
func GetDemoEmployees(companyID string, hireDate time.Time) []employee.Employee {
	return []employee.Employee{
		{
			CompanyID:        companyID,
			EmployeeCode:     "E001",
			FullName:         "Avery Hourly",
			Email:            "avery@example.com",
			CompensationType: employee.CompensationHourly,
			HourlyRate:       centsPtr(2500),
			FilingStatus:     employee.FilingSingle,
			WorkState:        "CA",
			Status:           employee.StatusActive,
			HireDate:         hireDate,
		},
		{
			CompanyID:             companyID,
			EmployeeCode:          "E002",
			FullName:              "Blake Salary",
			Email:                 "blake@example.com",
			CompensationType:      employee.CompensationSalary,
			AnnualSalary:          centsPtr(7800000),
			FilingStatus:          employee.FilingMarried,
			Allowances:            2,
			AdditionalWithholding: 2500,
			WorkState:             "NY",
			Status:                employee.StatusActive,
			HireDate:              hireDate,
		},
		{
			CompanyID:        companyID,
			EmployeeCode:     "E003",
			FullName:         "Casey NonExempt",
			Email:            "casey@example.com",
			CompensationType: employee.CompensationSalary,
			AnnualSalary:     centsPtr(5200000),
			NonExempt:        true,
			FilingStatus:     employee.FilingHeadOfHousehold,
			WorkState:        "TX",
			Status:           employee.StatusActive,
			HireDate:         hireDate,
		},
		{
			CompanyID:        companyID,
			EmployeeCode:     "E004",
			FullName:         "Devon Former",
			Email:            "devon@example.com",
			CompensationType: employee.CompensationHourly,
			HourlyRate:       centsPtr(1800),
			FilingStatus:     employee.FilingSingle,
			WorkState:        "CA",
			Status:           employee.StatusInactive,
			HireDate:         hireDate,
		},
	}
}

// ==========================================
// DEMO TIMESHEETS
// ==========================================

// DemoWeekHours maps employee code to regular and overtime hours worked Monday to Friday.
// Employees missing from the map get no timesheet and show up as exclusions.
var DemoWeekHours = map[string][2]string{
	"E001": {"8", "1"},
	"E002": {"8", "0"},
	"E003": {"8", "2"},
}

// GetDemoTimesheet builds an approved-ready week for the employee, or false when
// the employee has no demo hours.
func GetDemoTimesheet(emp employee.Employee, weekStarting time.Time) (timesheet.Timesheet, bool) {
	hours, ok := DemoWeekHours[emp.EmployeeCode]
	if !ok || !emp.IsActive() {
		return timesheet.Timesheet{}, false
	}
	ts := timesheet.New(emp.CompanyID, emp.ID, weekStarting)
	for i := 0; i < 5; i++ {
		ts.Entries[i].RegularHours = decimal.RequireFromString(hours[0])
		ts.Entries[i].OvertimeHours = decimal.RequireFromString(hours[1])
	}
	ts.Recompute()
	return ts, true
}
