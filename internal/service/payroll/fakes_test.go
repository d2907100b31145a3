package payroll

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// flatLookup withholds fixed fractions of gross: federal, state and FICA (booked as social security).
type flatLookup struct {
	federal decimal.Decimal
	state   decimal.Decimal
	fica    decimal.Decimal
	fail    map[string]bool
	calls   int
}

func newFlatLookup() *flatLookup {
	return &flatLookup{
		federal: decimal.RequireFromString("0.20"),
		state:   decimal.RequireFromString("0.05"),
		fica:    decimal.RequireFromString("0.0765"),
		fail:    map[string]bool{},
	}
}

func (l *flatLookup) Lookup(_ context.Context, req payroll.WithholdingRequest) (payroll.WithholdingAmounts, error) {
	l.calls++
	if l.fail[req.Jurisdiction] {
		return payroll.WithholdingAmounts{}, fmt.Errorf("no table for jurisdiction %s", req.Jurisdiction)
	}
	gross := req.GrossPay.Decimal()
	return payroll.WithholdingAmounts{
		Federal:        gross.Mul(l.federal),
		State:          gross.Mul(l.state),
		SocialSecurity: gross.Mul(l.fica),
	}, nil
}

// snapshotTransactor restores the in-memory runs and timesheets when fn fails.
type snapshotTransactor struct {
	runs   *memoryRunRepo
	sheets *approvedTimesheets
}

func (t snapshotTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	runs := make(map[string]payroll.Run, len(t.runs.runs))
	for k, v := range t.runs.runs {
		runs[k] = v
	}
	sheets := make(map[string]timesheet.Timesheet, len(t.sheets.byID))
	for k, v := range t.sheets.byID {
		sheets[k] = v
	}

	if err := fn(ctx); err != nil {
		t.runs.runs = runs
		t.sheets.byID = sheets
		return err
	}
	return nil
}

type memoryRunRepo struct {
	runs map[string]payroll.Run
	seq  int
}

func newMemoryRunRepo() *memoryRunRepo {
	return &memoryRunRepo{runs: map[string]payroll.Run{}}
}

func (r *memoryRunRepo) Create(_ context.Context, run payroll.Run) (payroll.Run, error) {
	r.seq++
	run.ID = fmt.Sprintf("run-%d", r.seq)
	run.CreatedAt = time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	run.UpdatedAt = run.CreatedAt
	r.runs[run.ID] = run
	return run, nil
}

func (r *memoryRunRepo) GetByID(_ context.Context, id, companyID string) (payroll.Run, error) {
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *memoryRunRepo) List(_ context.Context, companyID string, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	var out []payroll.Run
	for _, run := range r.runs {
		if run.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(run.Status) != *filter.Status {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *memoryRunRepo) SaveCalculation(_ context.Context, run payroll.Run) (bool, error) {
	stored, ok := r.runs[run.ID]
	if !ok || (stored.Status != payroll.RunStatusSetup && stored.Status != payroll.RunStatusCalculated) {
		return false, nil
	}
	stored.LineItems = run.LineItems
	stored.Excluded = run.Excluded
	stored.Totals = run.Totals
	stored.CalculatedAt = run.CalculatedAt
	stored.Status = payroll.RunStatusCalculated
	r.runs[run.ID] = stored
	return true, nil
}

func (r *memoryRunRepo) MarkCommitted(_ context.Context, id, companyID, committedBy string, at time.Time) (bool, error) {
	stored, ok := r.runs[id]
	if !ok || stored.CompanyID != companyID || stored.Status != payroll.RunStatusCalculated {
		return false, nil
	}
	stored.Status = payroll.RunStatusCommitted
	stored.CommittedAt = &at
	stored.CommittedBy = &committedBy
	r.runs[id] = stored
	return true, nil
}

func (r *memoryRunRepo) MarkCanceled(_ context.Context, id, companyID string, at time.Time) (bool, error) {
	stored, ok := r.runs[id]
	if !ok || stored.CompanyID != companyID {
		return false, nil
	}
	if stored.Status != payroll.RunStatusSetup && stored.Status != payroll.RunStatusCalculated {
		return false, nil
	}
	stored.Status = payroll.RunStatusCanceled
	stored.CanceledAt = &at
	r.runs[id] = stored
	return true, nil
}

func (r *memoryRunRepo) ListCommittedLineItems(_ context.Context, companyID, employeeID string) ([]payroll.PayslipSummary, error) {
	var out []payroll.PayslipSummary
	for _, run := range r.runs {
		if run.CompanyID != companyID || run.Status != payroll.RunStatusCommitted {
			continue
		}
		if li, ok := run.LineItemFor(employeeID); ok {
			out = append(out, payroll.PayslipSummary{
				RunID:          run.ID,
				EmployeeID:     li.EmployeeID,
				EmployeeName:   li.EmployeeName,
				PayPeriodStart: run.PayPeriodStart,
				PayPeriodEnd:   run.PayPeriodEnd,
				PayDate:        run.PayDate,
				GrossPay:       li.GrossPay,
				NetPay:         li.NetPay,
			})
		}
	}
	return out, nil
}

// activeEmployees only serves ListActive; other calls panic on the nil embedded interface.
type activeEmployees struct {
	employee.EmployeeRepository
	list []employee.Employee
}

func (r *activeEmployees) ListActive(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.list {
		if e.CompanyID == companyID && e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

type approvedTimesheets struct {
	timesheet.TimesheetRepository
	byID map[string]timesheet.Timesheet
}

func newApprovedTimesheets() *approvedTimesheets {
	return &approvedTimesheets{byID: map[string]timesheet.Timesheet{}}
}

func (r *approvedTimesheets) add(ts timesheet.Timesheet) {
	r.byID[ts.ID] = ts
}

func (r *approvedTimesheets) ListApprovedOverlapping(_ context.Context, companyID string, start, end time.Time) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, ts := range r.byID {
		if ts.CompanyID == companyID && ts.Status == timesheet.StatusApproved && ts.Overlaps(start, end) {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (r *approvedTimesheets) MarkPaid(_ context.Context, companyID string, ids []string, runID string) (int64, error) {
	var n int64
	for _, id := range ids {
		ts, ok := r.byID[id]
		if !ok || ts.CompanyID != companyID || ts.Status != timesheet.StatusApproved {
			continue
		}
		ts.Status = timesheet.StatusPaid
		ts.PaidRunID = &runID
		r.byID[id] = ts
		n++
	}
	return n, nil
}

type countingLedger struct {
	recorded map[string]int
}

func (l *countingLedger) RecordRun(_ context.Context, run payroll.Run) (taxliability.LiabilitiesResponse, error) {
	if l.recorded == nil {
		l.recorded = map[string]int{}
	}
	l.recorded[run.ID]++
	return taxliability.LiabilitiesResponse{}, nil
}

type memoryOutbox struct {
	events []outbox.Event
}

func (o *memoryOutbox) Create(_ context.Context, event outbox.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	o.events = append(o.events, event)
	return nil
}

func (o *memoryOutbox) ClaimPending(context.Context, int, time.Duration) ([]outbox.Event, error) {
	return nil, nil
}
func (o *memoryOutbox) MarkSent(context.Context, string) error           { return nil }
func (o *memoryOutbox) MarkFailed(context.Context, string, string) error { return nil }

func hourlyEmployee(id, code, state string, rateCents int64) employee.Employee {
	rate := money.Cents(rateCents)
	return employee.Employee{
		ID:               id,
		CompanyID:        "company-1",
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		CompensationType: employee.CompensationHourly,
		HourlyRate:       &rate,
		FilingStatus:     employee.FilingSingle,
		WorkState:        state,
		Status:           employee.StatusActive,
	}
}

func salariedEmployee(id, code string, annualCents int64, nonExempt bool) employee.Employee {
	salary := money.Cents(annualCents)
	return employee.Employee{
		ID:               id,
		CompanyID:        "company-1",
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		CompensationType: employee.CompensationSalary,
		AnnualSalary:     &salary,
		NonExempt:        nonExempt,
		FilingStatus:     employee.FilingMarried,
		WorkState:        "NY",
		Status:           employee.StatusActive,
	}
}

func approvedWeek(id, employeeID string, week time.Time, regular, overtime string) timesheet.Timesheet {
	ts := timesheet.New("company-1", employeeID, week)
	ts.ID = id
	ts.Entries[0].RegularHours = decimal.RequireFromString(regular)
	ts.Entries[0].OvertimeHours = decimal.RequireFromString(overtime)
	ts.Recompute()
	ts.Status = timesheet.StatusApproved
	return ts
}
