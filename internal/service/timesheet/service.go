package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type TimesheetServiceImpl struct {
	timesheetRepo timesheet.TimesheetRepository
	employeeRepo  employee.EmployeeRepository
	policy        ReviewerPolicy
	weekStart     time.Weekday
	now           func() time.Time
	logger        *slog.Logger
}

func NewTimesheetService(
	timesheetRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
	weekStart time.Weekday,
	logger *slog.Logger,
) timesheet.TimesheetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimesheetServiceImpl{
		timesheetRepo: timesheetRepo,
		employeeRepo:  employeeRepo,
		weekStart:     weekStart,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

// canActOn lets employees touch their own timesheets and view_all holders touch any.
func canActOn(p auth.Principal, employeeID string) bool {
	return p.Can(user.PermissionTimesheetViewAll) || p.IsEmployee(employeeID)
}

// load fetches a timesheet in the principal's tenant and checks ownership.
func (s *TimesheetServiceImpl) load(ctx context.Context, id string) (auth.Principal, timesheet.Timesheet, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, timesheet.Timesheet{}, err
	}

	ts, err := s.timesheetRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return auth.Principal{}, timesheet.Timesheet{}, err
	}
	if !canActOn(p, ts.EmployeeID) {
		return auth.Principal{}, timesheet.Timesheet{}, timesheet.ErrForbidden
	}
	return p, ts, nil
}

func (s *TimesheetServiceImpl) OpenTimesheet(ctx context.Context, req timesheet.OpenTimesheetRequest) (timesheet.TimesheetResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		if p.EmployeeID == nil {
			return timesheet.TimesheetResponse{}, validator.ValidationErrors{
				{Field: "employee_id", Message: "employee_id is required when the caller has no employee record"},
			}
		}
		employeeID = *p.EmployeeID
	}
	if !canActOn(p, employeeID) {
		return timesheet.TimesheetResponse{}, timesheet.ErrForbidden
	}

	weekStarting, _ := validator.IsValidDate(req.WeekStarting)
	if !timesheet.StartOfWeek(weekStarting, s.weekStart).Equal(weekStarting) {
		return timesheet.TimesheetResponse{}, timesheet.ErrInvalidWeekStart
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID, p.CompanyID); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	existing, err := s.timesheetRepo.GetByEmployeeWeek(ctx, p.CompanyID, employeeID, weekStarting)
	if err == nil {
		return timesheet.NewTimesheetResponse(existing), nil
	}
	if !errors.Is(err, timesheet.ErrTimesheetNotFound) {
		return timesheet.TimesheetResponse{}, err
	}

	created, err := s.timesheetRepo.Create(ctx, timesheet.New(p.CompanyID, employeeID, weekStarting))
	if errors.Is(err, timesheet.ErrTimesheetExists) {
		// Lost a race with a concurrent open of the same week.
		created, err = s.timesheetRepo.GetByEmployeeWeek(ctx, p.CompanyID, employeeID, weekStarting)
	}
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	s.logger.Info("timesheet opened",
		"company_id", p.CompanyID,
		"timesheet_id", created.ID,
		"employee_id", employeeID,
		"week_starting", weekStarting.Format("2006-01-02"),
	)
	return timesheet.NewTimesheetResponse(created), nil
}

func (s *TimesheetServiceImpl) GetTimesheet(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	_, ts, err := s.load(ctx, id)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	return timesheet.NewTimesheetResponse(ts), nil
}

func (s *TimesheetServiceImpl) ListTimesheets(ctx context.Context, filter timesheet.TimesheetFilter) (timesheet.ListTimesheetResponse, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}

	if !p.Can(user.PermissionTimesheetViewAll) {
		if p.EmployeeID == nil {
			return timesheet.ListTimesheetResponse{}, timesheet.ErrForbidden
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != *p.EmployeeID {
			return timesheet.ListTimesheetResponse{}, timesheet.ErrForbidden
		}
		filter.EmployeeID = p.EmployeeID
	}
	filter.Normalize()

	timesheets, total, err := s.timesheetRepo.List(ctx, p.CompanyID, filter)
	if err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}

	resp := timesheet.ListTimesheetResponse{
		Timesheets: make([]timesheet.TimesheetResponse, 0, len(timesheets)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, ts := range timesheets {
		resp.Timesheets = append(resp.Timesheets, timesheet.NewTimesheetResponse(ts))
	}
	return resp, nil
}

func (s *TimesheetServiceImpl) UpdateEntries(ctx context.Context, req timesheet.UpdateEntriesRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	p, ts, err := s.load(ctx, req.ID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	if !ts.IsMutable() {
		return timesheet.TimesheetResponse{}, timesheet.ErrTimesheetLocked
	}

	entries, err := req.ToEntries(ts.WeekStarting)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	if err := ts.ReplaceEntries(entries); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	updated, err := s.timesheetRepo.UpdateEntries(ctx, ts)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	s.logger.Debug("timesheet entries updated", "company_id", p.CompanyID, "timesheet_id", ts.ID)
	return timesheet.NewTimesheetResponse(updated), nil
}

func (s *TimesheetServiceImpl) SubmitTimesheet(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	p, ts, err := s.load(ctx, id)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	if !ts.IsMutable() {
		return timesheet.TimesheetResponse{}, timesheet.ErrAlreadySubmitted
	}

	now := s.now()
	ts.Status = timesheet.StatusSubmitted
	ts.SubmittedAt = &now

	updated, err := s.timesheetRepo.Transition(ctx, ts, []timesheet.Status{timesheet.StatusDraft, timesheet.StatusRejected})
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return timesheet.TimesheetResponse{}, timesheet.ErrAlreadySubmitted
		}
		return timesheet.TimesheetResponse{}, err
	}

	s.logger.Info("timesheet submitted", "company_id", p.CompanyID, "timesheet_id", id, "employee_id", ts.EmployeeID)
	return timesheet.NewTimesheetResponse(updated), nil
}

// review loads a submitted timesheet and checks the principal may review it.
func (s *TimesheetServiceImpl) review(ctx context.Context, id string) (auth.Principal, timesheet.Timesheet, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, timesheet.Timesheet{}, err
	}

	ts, err := s.timesheetRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return auth.Principal{}, timesheet.Timesheet{}, err
	}
	if ts.Status != timesheet.StatusSubmitted {
		return auth.Principal{}, timesheet.Timesheet{}, timesheet.ErrNotSubmitted
	}

	emp, err := s.employeeRepo.GetByID(ctx, ts.EmployeeID, p.CompanyID)
	if err != nil {
		return auth.Principal{}, timesheet.Timesheet{}, fmt.Errorf("failed to load timesheet employee: %w", err)
	}
	if !s.policy.CanReview(p, emp) {
		return auth.Principal{}, timesheet.Timesheet{}, timesheet.ErrUnauthorized
	}
	return p, ts, nil
}

func (s *TimesheetServiceImpl) ApproveTimesheet(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	p, ts, err := s.review(ctx, id)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	now := s.now()
	ts.Status = timesheet.StatusApproved
	ts.ApprovedAt = &now
	ts.ApprovedBy = &p.UserID

	updated, err := s.timesheetRepo.Transition(ctx, ts, []timesheet.Status{timesheet.StatusSubmitted})
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return timesheet.TimesheetResponse{}, timesheet.ErrNotSubmitted
		}
		return timesheet.TimesheetResponse{}, err
	}

	s.logger.Info("timesheet approved",
		"company_id", p.CompanyID,
		"timesheet_id", id,
		"employee_id", ts.EmployeeID,
		"approver", p.UserID,
	)
	return timesheet.NewTimesheetResponse(updated), nil
}

// RejectTimesheet sends the timesheet back to draft with the reason attached.
func (s *TimesheetServiceImpl) RejectTimesheet(ctx context.Context, req timesheet.RejectTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	p, ts, err := s.review(ctx, req.ID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	now := s.now()
	reason := strings.TrimSpace(req.Reason)
	ts.Status = timesheet.StatusDraft
	ts.RejectedAt = &now
	ts.RejectedBy = &p.UserID
	ts.RejectionReason = &reason

	updated, err := s.timesheetRepo.Transition(ctx, ts, []timesheet.Status{timesheet.StatusSubmitted})
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return timesheet.TimesheetResponse{}, timesheet.ErrNotSubmitted
		}
		return timesheet.TimesheetResponse{}, err
	}

	s.logger.Info("timesheet rejected",
		"company_id", p.CompanyID,
		"timesheet_id", req.ID,
		"employee_id", ts.EmployeeID,
		"reviewer", p.UserID,
	)
	return timesheet.NewTimesheetResponse(updated), nil
}
