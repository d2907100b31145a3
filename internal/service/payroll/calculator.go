package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	overtimeMultiplier  = decimal.RequireFromString("1.5")
	standardAnnualHours = decimal.NewFromInt(2080)
	standardWeeklyHours = decimal.NewFromInt(40)
)

// Calculator turns compensation terms and hours into a line item. Apart from the
// single withholding lookup per call it is pure: the same inputs always give the
// same cents.
type Calculator struct {
	lookup         payroll.WithholdingLookup
	periodsPerYear int
}

func NewCalculator(lookup payroll.WithholdingLookup, frequency payroll.PayFrequency) (*Calculator, error) {
	periods := frequency.PeriodsPerYear()
	if periods == 0 {
		return nil, fmt.Errorf("unsupported pay frequency %q", frequency)
	}
	return &Calculator{lookup: lookup, periodsPerYear: periods}, nil
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", payroll.ErrInvalidCompensationState, fmt.Sprintf(format, args...))
}

// SumWeeks totals the weekly hours for the period. Salaried non-exempt employees
// have regular hours beyond 40 in any week counted as overtime.
func (c *Calculator) SumWeeks(emp employee.Employee, weeks []payroll.HoursBreakdown) payroll.HoursBreakdown {
	reclassify := emp.CompensationType == employee.CompensationSalary && emp.NonExempt

	var total payroll.HoursBreakdown
	for _, week := range weeks {
		if reclassify {
			week = week.ReclassifyOvertime(standardWeeklyHours)
		}
		total = total.Add(week)
	}
	return total
}

// GrossPay returns unrounded gross pay for the period. hours must already be
// classified per week, see SumWeeks.
func (c *Calculator) GrossPay(emp employee.Employee, hours payroll.HoursBreakdown) (decimal.Decimal, error) {
	if err := emp.CheckCompensation(); err != nil {
		return decimal.Zero, invalidState("%v", err)
	}
	if hours.HasNegative() {
		return decimal.Zero, invalidState("negative hours")
	}

	switch emp.CompensationType {
	case employee.CompensationSalary:
		annual := emp.AnnualSalary.Decimal()
		gross := annual.Div(decimal.NewFromInt(int64(c.periodsPerYear)))
		if emp.NonExempt && hours.Overtime.IsPositive() {
			hourly := annual.Div(standardAnnualHours)
			gross = gross.Add(hours.Overtime.Mul(hourly).Mul(overtimeMultiplier))
		}
		return gross, nil
	case employee.CompensationHourly:
		rate := emp.HourlyRate.Decimal()
		regular := hours.Regular.Mul(rate)
		overtime := hours.Overtime.Mul(rate).Mul(overtimeMultiplier)
		holiday := hours.Holiday.Mul(rate)
		return regular.Add(overtime).Add(holiday), nil
	}
	return decimal.Zero, invalidState("unknown compensation type %q", emp.CompensationType)
}

// Calculate builds the line item for one employee. referenceDate selects the tax year.
func (c *Calculator) Calculate(ctx context.Context, emp employee.Employee, hours payroll.HoursBreakdown, referenceDate time.Time) (payroll.LineItem, error) {
	grossExact, err := c.GrossPay(emp, hours)
	if err != nil {
		return payroll.LineItem{}, err
	}
	gross := money.FromDecimal(grossExact)

	taxYear := referenceDate.Year()
	amounts, err := c.lookup.Lookup(ctx, payroll.WithholdingRequest{
		GrossPay:       gross,
		PeriodsPerYear: c.periodsPerYear,
		FilingStatus:   emp.FilingStatus,
		Allowances:     emp.Allowances,
		Jurisdiction:   emp.WorkState,
		TaxYear:        taxYear,
	})
	if err != nil {
		return payroll.LineItem{}, fmt.Errorf("%w: %v", payroll.ErrTaxLookupFailed, err)
	}

	withholding := payroll.Withholding{
		Federal:         money.FromDecimal(amounts.Federal.Add(emp.AdditionalWithholding.Decimal())),
		State:           money.FromDecimal(amounts.State),
		SocialSecurity:  money.FromDecimal(amounts.SocialSecurity),
		Medicare:        money.FromDecimal(amounts.Medicare),
		OtherDeductions: money.FromDecimal(amounts.OtherDeductions),
	}
	for _, v := range []money.Cents{withholding.Federal, withholding.State, withholding.SocialSecurity, withholding.Medicare, withholding.OtherDeductions} {
		if v.IsNegative() {
			return payroll.LineItem{}, fmt.Errorf("%w: negative withholding component", payroll.ErrTaxLookupFailed)
		}
	}

	net := gross - withholding.Total()
	if net.IsNegative() {
		return payroll.LineItem{}, invalidState("withholding %s exceeds gross pay %s", withholding.Total(), gross)
	}

	return payroll.LineItem{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Hours:        hours,
		Compensation: payroll.CompensationSnapshot{
			CompensationType:      emp.CompensationType,
			AnnualSalary:          copyCents(emp.AnnualSalary),
			HourlyRate:            copyCents(emp.HourlyRate),
			NonExempt:             emp.NonExempt,
			FilingStatus:          emp.FilingStatus,
			Allowances:            emp.Allowances,
			AdditionalWithholding: emp.AdditionalWithholding,
			WorkState:             emp.WorkState,
			PeriodsPerYear:        c.periodsPerYear,
		},
		GrossPay:    gross,
		Withholding: withholding,
		NetPay:      net,
		TaxYear:     taxYear,
	}, nil
}

// copyCents detaches the snapshot from the live employee record.
func copyCents(c *money.Cents) *money.Cents {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
