package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
)

type memoryTimesheetRepo struct {
	byID map[string]timesheet.Timesheet
	seq  int
}

func newMemoryTimesheetRepo() *memoryTimesheetRepo {
	return &memoryTimesheetRepo{byID: map[string]timesheet.Timesheet{}}
}

func (r *memoryTimesheetRepo) Create(_ context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	for _, existing := range r.byID {
		if existing.EmployeeID == ts.EmployeeID && existing.WeekStarting.Equal(ts.WeekStarting) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetExists
		}
	}
	r.seq++
	ts.ID = fmt.Sprintf("ts-%d", r.seq)
	r.byID[ts.ID] = ts
	return ts, nil
}

func (r *memoryTimesheetRepo) GetByID(_ context.Context, id, companyID string) (timesheet.Timesheet, error) {
	ts, ok := r.byID[id]
	if !ok || ts.CompanyID != companyID {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return ts, nil
}

func (r *memoryTimesheetRepo) GetByEmployeeWeek(_ context.Context, companyID, employeeID string, week time.Time) (timesheet.Timesheet, error) {
	for _, ts := range r.byID {
		if ts.CompanyID == companyID && ts.EmployeeID == employeeID && ts.WeekStarting.Equal(week) {
			return ts, nil
		}
	}
	return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
}

func (r *memoryTimesheetRepo) List(_ context.Context, companyID string, filter timesheet.TimesheetFilter) ([]timesheet.Timesheet, int64, error) {
	var out []timesheet.Timesheet
	for _, ts := range r.byID {
		if ts.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && ts.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(ts.Status) != *filter.Status {
			continue
		}
		out = append(out, ts)
	}
	return out, int64(len(out)), nil
}

func (r *memoryTimesheetRepo) UpdateEntries(_ context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	stored, ok := r.byID[ts.ID]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	if !stored.IsMutable() {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetLocked
	}
	stored.Entries = ts.Entries
	stored.Totals = ts.Totals
	r.byID[ts.ID] = stored
	return stored, nil
}

func (r *memoryTimesheetRepo) Transition(_ context.Context, ts timesheet.Timesheet, from []timesheet.Status) (timesheet.Timesheet, error) {
	stored, ok := r.byID[ts.ID]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	for _, s := range from {
		if stored.Status == s {
			stored.Status = ts.Status
			stored.SubmittedAt = ts.SubmittedAt
			stored.ApprovedAt = ts.ApprovedAt
			stored.ApprovedBy = ts.ApprovedBy
			stored.RejectedAt = ts.RejectedAt
			stored.RejectedBy = ts.RejectedBy
			stored.RejectionReason = ts.RejectionReason
			r.byID[ts.ID] = stored
			return stored, nil
		}
	}
	return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
}

func (r *memoryTimesheetRepo) ListApprovedOverlapping(_ context.Context, companyID string, start, end time.Time) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, ts := range r.byID {
		if ts.CompanyID == companyID && ts.Status == timesheet.StatusApproved && ts.Overlaps(start, end) {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (r *memoryTimesheetRepo) MarkPaid(_ context.Context, companyID string, ids []string, runID string) (int64, error) {
	var n int64
	for _, id := range ids {
		ts, ok := r.byID[id]
		if ok && ts.CompanyID == companyID && ts.Status == timesheet.StatusApproved {
			ts.Status = timesheet.StatusPaid
			ts.PaidRunID = &runID
			r.byID[id] = ts
			n++
		}
	}
	return n, nil
}

type memoryEmployeeRepo struct {
	byID map[string]employee.Employee
}

func newMemoryEmployeeRepo(employees ...employee.Employee) *memoryEmployeeRepo {
	r := &memoryEmployeeRepo{byID: map[string]employee.Employee{}}
	for _, e := range employees {
		r.byID[e.ID] = e
	}
	return r
}

func (r *memoryEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.byID[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	e, ok := r.byID[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memoryEmployeeRepo) List(_ context.Context, companyID string, _ employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	var out []employee.Employee
	for _, e := range r.byID {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryEmployeeRepo) ListActive(ctx context.Context, companyID string) ([]employee.Employee, error) {
	all, _, err := r.List(ctx, companyID, employee.EmployeeFilter{})
	return all, err
}

func (r *memoryEmployeeRepo) Update(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.byID[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) SetStatus(_ context.Context, id, _ string, status employee.EmploymentStatus) error {
	e := r.byID[id]
	e.Status = status
	r.byID[id] = e
	return nil
}
