package payroll

import "errors"

var (
	ErrRunNotFound              = errors.New("payroll run not found")
	ErrInvalidPeriod            = errors.New("invalid pay period: end must not precede start and pay date must not precede end")
	ErrInvalidCompensationState = errors.New("invalid compensation state")
	ErrNotCalculated            = errors.New("payroll run is not calculated")
	ErrAlreadyCommitted         = errors.New("payroll run is already committed")
	ErrRunCanceled              = errors.New("payroll run is canceled")
	ErrTimesheetAlreadyPaid     = errors.New("a timesheet in this run was already paid by another run")
	ErrTaxLookupFailed          = errors.New("withholding lookup failed")
	ErrPayslipNotFound          = errors.New("payslip not found")
	ErrForbidden                = errors.New("not allowed to view this payslip")
	ErrUnauthorized             = errors.New("not authorized to perform this payroll operation")
)
