package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

const DaysPerWeek = 7

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid" // consumed by a committed payroll run
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

type Entry struct {
	WorkDate      time.Time
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HolidayHours  decimal.Decimal
	BreakMinutes  int
	Notes         string
}

func (e Entry) TotalHours() decimal.Decimal {
	return e.RegularHours.Add(e.OvertimeHours).Add(e.HolidayHours)
}

type Totals struct {
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HolidayHours  decimal.Decimal
	BreakMinutes  int
}

type Timesheet struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	WeekStarting    time.Time
	Entries         []Entry
	Totals          Totals
	Status          Status
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *string
	RejectedAt      *time.Time
	RejectedBy      *string
	RejectionReason *string
	PaidRunID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New returns a draft week with one empty entry per day.
func New(companyID, employeeID string, weekStarting time.Time) Timesheet {
	ts := Timesheet{
		CompanyID:    companyID,
		EmployeeID:   employeeID,
		WeekStarting: weekStarting,
		Status:       StatusDraft,
		Entries:      make([]Entry, DaysPerWeek),
	}
	for i := range ts.Entries {
		ts.Entries[i].WorkDate = weekStarting.AddDate(0, 0, i)
	}
	ts.Recompute()
	return ts
}

func (t Timesheet) WeekEnding() time.Time {
	return t.WeekStarting.AddDate(0, 0, DaysPerWeek-1)
}

// Overlaps reports whether the week shares at least one day with [start, end].
func (t Timesheet) Overlaps(start, end time.Time) bool {
	return !t.WeekStarting.After(end) && !t.WeekEnding().Before(start)
}

// IsMutable reports whether entries may still change.
func (t Timesheet) IsMutable() bool {
	return t.Status == StatusDraft || t.Status == StatusRejected
}

// Recompute derives the totals from the entries.
func (t *Timesheet) Recompute() {
	totals := Totals{}
	for _, e := range t.Entries {
		totals.RegularHours = totals.RegularHours.Add(e.RegularHours)
		totals.OvertimeHours = totals.OvertimeHours.Add(e.OvertimeHours)
		totals.HolidayHours = totals.HolidayHours.Add(e.HolidayHours)
		totals.BreakMinutes += e.BreakMinutes
	}
	t.Totals = totals
}

// ReplaceEntries swaps in a new week of entries. Callers validate the entries first.
func (t *Timesheet) ReplaceEntries(entries []Entry) error {
	if !t.IsMutable() {
		return ErrTimesheetLocked
	}
	t.Entries = entries
	t.Recompute()
	return nil
}

// StartOfWeek returns the first day of the week containing d.
func StartOfWeek(d time.Time, weekStart time.Weekday) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	return d.AddDate(0, 0, -offset)
}
