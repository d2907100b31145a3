package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, validator.ErrMalformedBody):
		BadRequest(w, "Invalid request body", nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingPrincipal):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrCompanyRequired):
		Forbidden(w, "Token is not bound to a company")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered in this company")
	case errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, "Employee is already inactive")
	case errors.Is(err, employee.ErrInvalidCompensationTerms):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrTimesheetExists):
		Conflict(w, "Timesheet already exists for this week")
	case errors.Is(err, timesheet.ErrTimesheetLocked),
		errors.Is(err, timesheet.ErrNotSubmitted),
		errors.Is(err, timesheet.ErrAlreadySubmitted):
		Conflict(w, err.Error())
	case errors.Is(err, timesheet.ErrInvalidWeekStart),
		errors.Is(err, timesheet.ErrRejectReasonRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timesheet.ErrUnauthorized),
		errors.Is(err, timesheet.ErrForbidden):
		Forbidden(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrNotCalculated),
		errors.Is(err, payroll.ErrAlreadyCommitted),
		errors.Is(err, payroll.ErrRunCanceled),
		errors.Is(err, payroll.ErrTimesheetAlreadyPaid):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidCompensationState):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrForbidden),
		errors.Is(err, payroll.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Tax liability domain errors
	case errors.Is(err, taxliability.ErrEntryNotFound):
		NotFound(w, "Ledger entry not found")
	case errors.Is(err, taxliability.ErrInvalidPeriod),
		errors.Is(err, taxliability.ErrQuarterRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, taxliability.ErrRunNotCommitted):
		Conflict(w, err.Error())
	case errors.Is(err, taxliability.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
