package timesheet

import "errors"

var (
	ErrTimesheetNotFound    = errors.New("timesheet not found")
	ErrTimesheetExists      = errors.New("timesheet already exists for this week")
	ErrTimesheetLocked      = errors.New("timesheet entries can only change while draft or rejected")
	ErrNotSubmitted         = errors.New("timesheet is not submitted")
	ErrAlreadySubmitted     = errors.New("timesheet is already submitted or finalized")
	ErrUnauthorized         = errors.New("not authorized to review this timesheet")
	ErrForbidden            = errors.New("not allowed to act on this timesheet")
	ErrInvalidWeekStart     = errors.New("week_starting is not a start of week")
	ErrRejectReasonRequired = errors.New("rejection reason is required")
)
