package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var maxHoursPerDay = decimal.NewFromInt(24)

type OpenTimesheetRequest struct {
	// EmployeeID defaults to the caller's own employee record.
	EmployeeID   string `json:"employee_id,omitempty"`
	WeekStarting string `json:"week_starting"`
}

func (r *OpenTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if _, ok := validator.IsValidDate(r.WeekStarting); !ok {
		errs = append(errs, validator.ValidationError{Field: "week_starting", Message: "week_starting must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EntryRequest struct {
	WorkDate      string          `json:"work_date"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	BreakMinutes  int             `json:"break_minutes"`
	Notes         string          `json:"notes,omitempty"`
}

type UpdateEntriesRequest struct {
	ID      string         `json:"-"`
	Entries []EntryRequest `json:"entries"`
}

func (r *UpdateEntriesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if len(r.Entries) != DaysPerWeek {
		errs = append(errs, validator.ValidationError{Field: "entries", Message: fmt.Sprintf("entries must contain exactly %d days", DaysPerWeek)})
	}

	for i, e := range r.Entries {
		prefix := fmt.Sprintf("entries[%d]", i)
		if _, ok := validator.IsValidDate(e.WorkDate); !ok {
			errs = append(errs, validator.ValidationError{Field: prefix + ".work_date", Message: "work_date must be in YYYY-MM-DD format"})
		}
		if !validator.IsValidHours(e.RegularHours) {
			errs = append(errs, validator.ValidationError{Field: prefix + ".regular_hours", Message: "regular_hours must be non-negative with at most 2 decimals"})
		}
		if !validator.IsValidHours(e.OvertimeHours) {
			errs = append(errs, validator.ValidationError{Field: prefix + ".overtime_hours", Message: "overtime_hours must be non-negative with at most 2 decimals"})
		}
		if !validator.IsValidHours(e.HolidayHours) {
			errs = append(errs, validator.ValidationError{Field: prefix + ".holiday_hours", Message: "holiday_hours must be non-negative with at most 2 decimals"})
		}
		total := e.RegularHours.Add(e.OvertimeHours).Add(e.HolidayHours)
		if total.GreaterThan(maxHoursPerDay) {
			errs = append(errs, validator.ValidationError{Field: prefix, Message: "combined hours must not exceed 24 per day"})
		}
		if e.BreakMinutes < 0 {
			errs = append(errs, validator.ValidationError{Field: prefix + ".break_minutes", Message: "break_minutes must be non-negative"})
		}
		if len(e.Notes) > 1000 {
			errs = append(errs, validator.ValidationError{Field: prefix + ".notes", Message: "notes must not exceed 1000 characters"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntries converts validated entries, checking that entry i falls on weekStarting + i days.
func (r *UpdateEntriesRequest) ToEntries(weekStarting time.Time) ([]Entry, error) {
	var errs validator.ValidationErrors
	entries := make([]Entry, 0, len(r.Entries))

	for i, e := range r.Entries {
		date, _ := validator.IsValidDate(e.WorkDate)
		expected := weekStarting.AddDate(0, 0, i)
		if !date.Equal(expected) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("entries[%d].work_date", i),
				Message: "work_date must be " + expected.Format("2006-01-02"),
			})
			continue
		}
		entries = append(entries, Entry{
			WorkDate:      date,
			RegularHours:  e.RegularHours,
			OvertimeHours: e.OvertimeHours,
			HolidayHours:  e.HolidayHours,
			BreakMinutes:  e.BreakMinutes,
			Notes:         strings.TrimSpace(e.Notes),
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}

type RejectTimesheetRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: ErrRejectReasonRequired.Error()})
	} else if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimesheetFilter struct {
	EmployeeID *string
	Status     *string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

func (f *TimesheetFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type EntryResponse struct {
	WorkDate      string          `json:"work_date"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	BreakMinutes  int             `json:"break_minutes"`
	Notes         string          `json:"notes,omitempty"`
}

type TotalsResponse struct {
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	BreakMinutes  int             `json:"break_minutes"`
}

type TimesheetResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	WeekStarting    string          `json:"week_starting"`
	Status          string          `json:"status"`
	Entries         []EntryResponse `json:"entries"`
	Totals          TotalsResponse  `json:"totals"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	RejectedBy      *string         `json:"rejected_by,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	PaidRunID       *string         `json:"paid_run_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewTimesheetResponse(t Timesheet) TimesheetResponse {
	entries := make([]EntryResponse, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, EntryResponse{
			WorkDate:      e.WorkDate.Format("2006-01-02"),
			RegularHours:  e.RegularHours,
			OvertimeHours: e.OvertimeHours,
			HolidayHours:  e.HolidayHours,
			BreakMinutes:  e.BreakMinutes,
			Notes:         e.Notes,
		})
	}

	return TimesheetResponse{
		ID:           t.ID,
		EmployeeID:   t.EmployeeID,
		WeekStarting: t.WeekStarting.Format("2006-01-02"),
		Status:       string(t.Status),
		Entries:      entries,
		Totals: TotalsResponse{
			RegularHours:  t.Totals.RegularHours,
			OvertimeHours: t.Totals.OvertimeHours,
			HolidayHours:  t.Totals.HolidayHours,
			BreakMinutes:  t.Totals.BreakMinutes,
		},
		SubmittedAt:     t.SubmittedAt,
		ApprovedAt:      t.ApprovedAt,
		ApprovedBy:      t.ApprovedBy,
		RejectedAt:      t.RejectedAt,
		RejectedBy:      t.RejectedBy,
		RejectionReason: t.RejectionReason,
		PaidRunID:       t.PaidRunID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type ListTimesheetResponse struct {
	Timesheets []TimesheetResponse `json:"timesheets"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}
