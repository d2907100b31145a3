package timesheet

import "context"

// TimesheetService covers the weekly store and the approval gate.
type TimesheetService interface {
	// OpenTimesheet returns the employee's timesheet for the week, creating a draft if none exists.
	OpenTimesheet(ctx context.Context, req OpenTimesheetRequest) (TimesheetResponse, error)
	GetTimesheet(ctx context.Context, id string) (TimesheetResponse, error)
	ListTimesheets(ctx context.Context, filter TimesheetFilter) (ListTimesheetResponse, error)
	UpdateEntries(ctx context.Context, req UpdateEntriesRequest) (TimesheetResponse, error)
	SubmitTimesheet(ctx context.Context, id string) (TimesheetResponse, error)

	ApproveTimesheet(ctx context.Context, id string) (TimesheetResponse, error)
	RejectTimesheet(ctx context.Context, req RejectTimesheetRequest) (TimesheetResponse, error)
}
