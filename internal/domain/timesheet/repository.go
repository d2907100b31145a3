package timesheet

import (
	"context"
	"time"
)

type TimesheetRepository interface {
	Create(ctx context.Context, ts Timesheet) (Timesheet, error)
	GetByID(ctx context.Context, id string, companyID string) (Timesheet, error)
	GetByEmployeeWeek(ctx context.Context, companyID, employeeID string, weekStarting time.Time) (Timesheet, error)
	List(ctx context.Context, companyID string, filter TimesheetFilter) ([]Timesheet, int64, error)

	// UpdateEntries writes entries and totals only while the stored status is draft or rejected.
	UpdateEntries(ctx context.Context, ts Timesheet) (Timesheet, error)

	// Transition moves a timesheet from one of the given statuses to the next one,
	// returning ErrTimesheetNotFound when the guard does not match.
	Transition(ctx context.Context, ts Timesheet, from []Status) (Timesheet, error)

	// ListApprovedOverlapping returns approved, unpaid timesheets whose week overlaps [start, end].
	ListApprovedOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]Timesheet, error)

	// MarkPaid flips approved timesheets to paid for the run and returns how many changed.
	MarkPaid(ctx context.Context, companyID string, ids []string, runID string) (int64, error)
}
