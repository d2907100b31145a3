package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID = "company-1"
	monday    = "2026-03-02"

	emp1       = "0190a6c4-0000-7000-8000-000000000001"
	emp2       = "0190a6c4-0000-7000-8000-000000000002"
	empMissing = "0190a6c4-0000-7000-8000-000000000404"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	svc        timesheet.TimesheetService
	timesheets *memoryTimesheetRepo
	employees  *memoryEmployeeRepo
}

func newFixture(employees ...employee.Employee) fixture {
	if len(employees) == 0 {
		employees = []employee.Employee{
			{ID: emp1, CompanyID: companyID, UserID: strPtr("user-emp-1"), Status: employee.StatusActive},
			{ID: emp2, CompanyID: companyID, UserID: strPtr("user-emp-2"), Status: employee.StatusActive},
		}
	}
	ts := newMemoryTimesheetRepo()
	emps := newMemoryEmployeeRepo(employees...)
	svc := NewTimesheetService(ts, emps, time.Monday, nil)
	svc.(*TimesheetServiceImpl).now = func() time.Time {
		return time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	}
	return fixture{svc: svc, timesheets: ts, employees: emps}
}

func asEmployee(employeeID string) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{
		UserID:     "user-" + employeeID,
		CompanyID:  companyID,
		EmployeeID: &employeeID,
		Role:       user.RoleEmployee,
	})
}

func asRole(userID string, role user.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	})
}

func fullWeek(start string, regular, overtime int64) timesheet.UpdateEntriesRequest {
	week, _ := validator.IsValidDate(start)
	req := timesheet.UpdateEntriesRequest{}
	for i := 0; i < timesheet.DaysPerWeek; i++ {
		e := timesheet.EntryRequest{WorkDate: week.AddDate(0, 0, i).Format("2006-01-02")}
		if i < 5 {
			e.RegularHours = decimal.NewFromInt(regular)
			e.OvertimeHours = decimal.NewFromInt(overtime)
			e.BreakMinutes = 30
		}
		req.Entries = append(req.Entries, e)
	}
	return req
}

// submitted opens, fills and submits a week for emp-1.
func (f fixture) submitted(t *testing.T) timesheet.TimesheetResponse {
	t.Helper()
	ctx := asEmployee(emp1)

	opened, err := f.svc.OpenTimesheet(ctx, timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)

	req := fullWeek(monday, 8, 1)
	req.ID = opened.ID
	_, err = f.svc.UpdateEntries(ctx, req)
	require.NoError(t, err)

	resp, err := f.svc.SubmitTimesheet(ctx, opened.ID)
	require.NoError(t, err)
	return resp
}

func TestOpenTimesheet_CreatesDraftOnce(t *testing.T) {
	f := newFixture()
	ctx := asEmployee(emp1)

	first, err := f.svc.OpenTimesheet(ctx, timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)
	assert.Equal(t, "draft", first.Status)
	assert.Equal(t, emp1, first.EmployeeID)
	require.Len(t, first.Entries, 7)
	assert.Equal(t, "2026-03-08", first.Entries[6].WorkDate)

	second, err := f.svc.OpenTimesheet(ctx, timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.timesheets.byID, 1)
}

func TestOpenTimesheet_Rules(t *testing.T) {
	f := newFixture()

	_, err := f.svc.OpenTimesheet(asEmployee(emp1), timesheet.OpenTimesheetRequest{WeekStarting: "2026-03-04"})
	assert.ErrorIs(t, err, timesheet.ErrInvalidWeekStart)

	_, err = f.svc.OpenTimesheet(asEmployee(emp1), timesheet.OpenTimesheetRequest{EmployeeID: emp2, WeekStarting: monday})
	assert.ErrorIs(t, err, timesheet.ErrForbidden)

	_, err = f.svc.OpenTimesheet(asRole("owner-1", user.RoleOwner), timesheet.OpenTimesheetRequest{WeekStarting: monday})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	opened, err := f.svc.OpenTimesheet(asRole("manager-1", user.RoleManager), timesheet.OpenTimesheetRequest{EmployeeID: emp2, WeekStarting: monday})
	require.NoError(t, err)
	assert.Equal(t, emp2, opened.EmployeeID)

	_, err = f.svc.OpenTimesheet(asRole("owner-1", user.RoleOwner), timesheet.OpenTimesheetRequest{EmployeeID: empMissing, WeekStarting: monday})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestOpenTimesheet_MalformedEmployeeID(t *testing.T) {
	f := newFixture()

	_, err := f.svc.OpenTimesheet(asRole("owner-1", user.RoleOwner), timesheet.OpenTimesheetRequest{EmployeeID: "emp-2", WeekStarting: monday})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "employee_id", verrs[0].Field)
	assert.Empty(t, f.timesheets.byID)
}

func TestUpdateEntries_RecomputesTotals(t *testing.T) {
	f := newFixture()
	ctx := asEmployee(emp1)

	opened, err := f.svc.OpenTimesheet(ctx, timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)

	req := fullWeek(monday, 8, 1)
	req.ID = opened.ID
	updated, err := f.svc.UpdateEntries(ctx, req)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(40).Equal(updated.Totals.RegularHours))
	assert.True(t, decimal.NewFromInt(5).Equal(updated.Totals.OvertimeHours))
	assert.Equal(t, 150, updated.Totals.BreakMinutes)
}

func TestUpdateEntries_Validation(t *testing.T) {
	f := newFixture()
	ctx := asEmployee(emp1)

	opened, err := f.svc.OpenTimesheet(ctx, timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)

	shifted := fullWeek("2026-03-09", 8, 0)
	shifted.ID = opened.ID
	_, err = f.svc.UpdateEntries(ctx, shifted)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "entries[0].work_date")

	tooLong := fullWeek(monday, 20, 5)
	tooLong.ID = opened.ID
	_, err = f.svc.UpdateEntries(ctx, tooLong)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "entries[0]")

	short := fullWeek(monday, 8, 0)
	short.ID = opened.ID
	short.Entries = short.Entries[:6]
	_, err = f.svc.UpdateEntries(ctx, short)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "entries")
}

func TestSubmit_LocksEntries(t *testing.T) {
	f := newFixture()
	submitted := f.submitted(t)
	assert.Equal(t, "submitted", submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	req := fullWeek(monday, 7, 0)
	req.ID = submitted.ID
	_, err := f.svc.UpdateEntries(asEmployee(emp1), req)
	assert.ErrorIs(t, err, timesheet.ErrTimesheetLocked)

	_, err = f.svc.SubmitTimesheet(asEmployee(emp1), submitted.ID)
	assert.ErrorIs(t, err, timesheet.ErrAlreadySubmitted)
}

func TestGetTimesheet_OwnershipEnforced(t *testing.T) {
	f := newFixture()
	submitted := f.submitted(t)

	_, err := f.svc.GetTimesheet(asEmployee(emp2), submitted.ID)
	assert.ErrorIs(t, err, timesheet.ErrForbidden)

	got, err := f.svc.GetTimesheet(asRole("manager-1", user.RoleManager), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, got.ID)
}

func TestApprove(t *testing.T) {
	f := newFixture()
	submitted := f.submitted(t)

	approved, err := f.svc.ApproveTimesheet(asRole("manager-1", user.RoleManager), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "manager-1", *approved.ApprovedBy)

	_, err = f.svc.ApproveTimesheet(asRole("manager-1", user.RoleManager), submitted.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotSubmitted)

	req := fullWeek(monday, 1, 0)
	req.ID = submitted.ID
	_, err = f.svc.UpdateEntries(asEmployee(emp1), req)
	assert.ErrorIs(t, err, timesheet.ErrTimesheetLocked)
}

func TestApprove_NotSubmitted(t *testing.T) {
	f := newFixture()

	opened, err := f.svc.OpenTimesheet(asEmployee(emp1), timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)

	_, err = f.svc.ApproveTimesheet(asRole("manager-1", user.RoleManager), opened.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotSubmitted)
}

func TestApprove_ReviewerPolicy(t *testing.T) {
	t.Run("employee role cannot approve", func(t *testing.T) {
		f := newFixture()
		submitted := f.submitted(t)

		_, err := f.svc.ApproveTimesheet(asEmployee(emp2), submitted.ID)
		assert.ErrorIs(t, err, timesheet.ErrUnauthorized)
	})

	t.Run("no self approval", func(t *testing.T) {
		f := newFixture()
		submitted := f.submitted(t)

		_, err := f.svc.ApproveTimesheet(asRole("user-emp-1", user.RoleManager), submitted.ID)
		assert.ErrorIs(t, err, timesheet.ErrUnauthorized)
		assert.Equal(t, timesheet.StatusSubmitted, f.timesheets.byID[submitted.ID].Status)
	})

	t.Run("designated manager", func(t *testing.T) {
		f := newFixture(
			employee.Employee{ID: emp1, CompanyID: companyID, ManagerUserID: strPtr("manager-a"), Status: employee.StatusActive},
		)
		submitted := f.submitted(t)

		_, err := f.svc.ApproveTimesheet(asRole("manager-b", user.RoleManager), submitted.ID)
		assert.ErrorIs(t, err, timesheet.ErrUnauthorized)

		_, err = f.svc.ApproveTimesheet(asRole("owner-1", user.RoleOwner), submitted.ID)
		assert.NoError(t, err)
	})
}

func TestReject_ReturnsToDraftWithReason(t *testing.T) {
	f := newFixture()
	submitted := f.submitted(t)
	reviewer := asRole("manager-1", user.RoleManager)

	_, err := f.svc.RejectTimesheet(reviewer, timesheet.RejectTimesheetRequest{ID: submitted.ID, Reason: "   "})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "reason")

	rejected, err := f.svc.RejectTimesheet(reviewer, timesheet.RejectTimesheetRequest{ID: submitted.ID, Reason: " missing Friday "})
	require.NoError(t, err)
	assert.Equal(t, "draft", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "missing Friday", *rejected.RejectionReason)

	// Editable and resubmittable after rejection.
	req := fullWeek(monday, 8, 0)
	req.ID = submitted.ID
	_, err = f.svc.UpdateEntries(asEmployee(emp1), req)
	require.NoError(t, err)
	resubmitted, err := f.svc.SubmitTimesheet(asEmployee(emp1), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", resubmitted.Status)

	_, err = f.svc.RejectTimesheet(asEmployee(emp2), timesheet.RejectTimesheetRequest{ID: submitted.ID, Reason: "no"})
	assert.ErrorIs(t, err, timesheet.ErrUnauthorized)
}

func TestListTimesheets_SelfServiceScoped(t *testing.T) {
	f := newFixture()
	f.submitted(t)
	_, err := f.svc.OpenTimesheet(asEmployee(emp2), timesheet.OpenTimesheetRequest{WeekStarting: monday})
	require.NoError(t, err)

	own, err := f.svc.ListTimesheets(asEmployee(emp2), timesheet.TimesheetFilter{})
	require.NoError(t, err)
	require.Len(t, own.Timesheets, 1)
	assert.Equal(t, emp2, own.Timesheets[0].EmployeeID)

	_, err = f.svc.ListTimesheets(asEmployee(emp2), timesheet.TimesheetFilter{EmployeeID: strPtr(emp1)})
	assert.ErrorIs(t, err, timesheet.ErrForbidden)

	all, err := f.svc.ListTimesheets(asRole("manager-1", user.RoleManager), timesheet.TimesheetFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Timesheets, 2)
}

func TestReviewerPolicy(t *testing.T) {
	emp := employee.Employee{ID: emp1, UserID: strPtr("user-1")}
	policy := ReviewerPolicy{}

	assert.True(t, policy.CanReview(auth.Principal{UserID: "mgr", Role: user.RoleManager}, emp))
	assert.False(t, policy.CanReview(auth.Principal{UserID: "user-1", Role: user.RoleOwner}, emp))
	assert.False(t, policy.CanReview(auth.Principal{UserID: "x", Role: user.RoleEmployee}, emp))
}
