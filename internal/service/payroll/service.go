package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type PayrollServiceImpl struct {
	transactor    database.Transactor
	runRepo       payroll.RunRepository
	employeeRepo  employee.EmployeeRepository
	timesheetRepo timesheet.TimesheetRepository
	calculator    *Calculator
	ledger        taxliability.Recorder
	outboxRepo    outbox.Repository
	files         storage.FileStorage
	eventTopic    string
	now           func() time.Time
	logger        *slog.Logger
}

func NewPayrollService(
	transactor database.Transactor,
	runRepo payroll.RunRepository,
	employeeRepo employee.EmployeeRepository,
	timesheetRepo timesheet.TimesheetRepository,
	calculator *Calculator,
	ledger taxliability.Recorder,
	outboxRepo outbox.Repository,
	files storage.FileStorage,
	eventTopic string,
	logger *slog.Logger,
) payroll.PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		transactor:    transactor,
		runRepo:       runRepo,
		employeeRepo:  employeeRepo,
		timesheetRepo: timesheetRepo,
		calculator:    calculator,
		ledger:        ledger,
		outboxRepo:    outboxRepo,
		files:         files,
		eventTopic:    eventTopic,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

func requirePermission(ctx context.Context, permission user.Permission) (auth.Principal, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	if !p.Can(permission) {
		return auth.Principal{}, payroll.ErrUnauthorized
	}
	return p, nil
}

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollRun)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}
	start, end, payDate, err := req.Period()
	if err != nil {
		return payroll.RunResponse{}, err
	}

	created, err := s.runRepo.Create(ctx, payroll.Run{
		CompanyID:      p.CompanyID,
		PayPeriodStart: start,
		PayPeriodEnd:   end,
		PayDate:        payDate,
		Status:         payroll.RunStatusSetup,
		CreatedBy:      p.UserID,
	})
	metrics.RunTransitions.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		return payroll.RunResponse{}, err
	}

	s.logger.Info("payroll run created",
		"company_id", p.CompanyID,
		"run_id", created.ID,
		"pay_period_start", req.PayPeriodStart,
		"pay_period_end", req.PayPeriodEnd,
	)
	return payroll.NewRunResponse(created), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollView)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	run, err := s.runRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.NewRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollView)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}
	filter.Normalize()

	runs, total, err := s.runRepo.List(ctx, p.CompanyID, filter)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	responses := make([]payroll.RunResponse, 0, len(runs))
	for _, r := range runs {
		responses = append(responses, payroll.NewRunResponse(r))
	}
	return payroll.ListRunResponse{
		Runs:       responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// lockedRunError explains why a run could not move forward.
func lockedRunError(run payroll.Run) error {
	switch run.Status {
	case payroll.RunStatusCommitted:
		return payroll.ErrAlreadyCommitted
	case payroll.RunStatusCanceled:
		return payroll.ErrRunCanceled
	}
	return nil
}

func (s *PayrollServiceImpl) CalculateRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollRun)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	started := time.Now()
	run, err := s.calculate(ctx, p, id)
	metrics.RunTransitions.WithLabelValues("calculate", metrics.Outcome(err)).Inc()
	if err != nil {
		return payroll.RunResponse{}, err
	}
	metrics.CalculationDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("payroll run calculated",
		"company_id", p.CompanyID,
		"run_id", run.ID,
		"employees", run.Totals.EmployeeCount,
		"excluded", run.Totals.ExcludedCount,
		"gross_pay", run.Totals.GrossPay.String(),
	)
	return payroll.NewRunResponse(run), nil
}

func (s *PayrollServiceImpl) calculate(ctx context.Context, p auth.Principal, id string) (payroll.Run, error) {
	run, err := s.runRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return payroll.Run{}, err
	}
	if err := lockedRunError(run); err != nil {
		return payroll.Run{}, err
	}

	var (
		employees []employee.Employee
		sheets    []timesheet.Timesheet
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.ListActive(gCtx, p.CompanyID)
		return err
	})
	g.Go(func() error {
		var err error
		sheets, err = s.timesheetRepo.ListApprovedOverlapping(gCtx, p.CompanyID, run.PayPeriodStart, run.PayPeriodEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll.Run{}, err
	}

	sort.SliceStable(employees, func(i, j int) bool {
		if employees[i].EmployeeCode != employees[j].EmployeeCode {
			return employees[i].EmployeeCode < employees[j].EmployeeCode
		}
		return employees[i].ID < employees[j].ID
	})

	byEmployee := make(map[string][]timesheet.Timesheet)
	for _, ts := range sheets {
		byEmployee[ts.EmployeeID] = append(byEmployee[ts.EmployeeID], ts)
	}

	lineItems := make([]payroll.LineItem, 0, len(employees))
	excluded := make([]payroll.Exclusion, 0)
	for _, emp := range employees {
		empSheets := byEmployee[emp.ID]
		if len(empSheets) == 0 {
			excluded = append(excluded, payroll.Exclusion{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       payroll.ExcludedNoApprovedTimesheet,
			})
			continue
		}
		sort.Slice(empSheets, func(i, j int) bool {
			if !empSheets[i].WeekStarting.Equal(empSheets[j].WeekStarting) {
				return empSheets[i].WeekStarting.Before(empSheets[j].WeekStarting)
			}
			return empSheets[i].ID < empSheets[j].ID
		})

		weeks := make([]payroll.HoursBreakdown, 0, len(empSheets))
		timesheetIDs := make([]string, 0, len(empSheets))
		for _, ts := range empSheets {
			weeks = append(weeks, payroll.HoursBreakdown{
				Regular:  ts.Totals.RegularHours,
				Overtime: ts.Totals.OvertimeHours,
				Holiday:  ts.Totals.HolidayHours,
			})
			timesheetIDs = append(timesheetIDs, ts.ID)
		}
		hours := s.calculator.SumWeeks(emp, weeks)

		item, err := s.calculator.Calculate(ctx, emp, hours, run.PayDate)
		switch {
		case errors.Is(err, payroll.ErrInvalidCompensationState):
			excluded = append(excluded, payroll.Exclusion{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       payroll.ExcludedInvalidCompensation,
				Detail:       err.Error(),
			})
			continue
		case errors.Is(err, payroll.ErrTaxLookupFailed):
			excluded = append(excluded, payroll.Exclusion{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       payroll.ExcludedTaxLookupFailed,
				Detail:       err.Error(),
			})
			continue
		case err != nil:
			return payroll.Run{}, fmt.Errorf("failed to calculate employee %s: %w", emp.ID, err)
		}

		item.RunID = run.ID
		item.TimesheetIDs = timesheetIDs
		lineItems = append(lineItems, item)
	}

	calculatedAt := s.now()
	run.LineItems = lineItems
	run.Excluded = excluded
	run.CalculatedAt = &calculatedAt
	run.Aggregate()

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err := s.runRepo.SaveCalculation(ctx, run)
		if err != nil {
			return err
		}
		if saved {
			return nil
		}
		current, err := s.runRepo.GetByID(ctx, run.ID, run.CompanyID)
		if err != nil {
			return err
		}
		if err := lockedRunError(current); err != nil {
			return err
		}
		return fmt.Errorf("failed to save calculation: run %s is %s", run.ID, current.Status)
	})
	if err != nil {
		return payroll.Run{}, err
	}

	metrics.LineItems.Add(float64(len(lineItems)))
	for _, ex := range excluded {
		metrics.Exclusions.WithLabelValues(string(ex.Reason)).Inc()
	}

	return s.runRepo.GetByID(ctx, run.ID, run.CompanyID)
}

type committedEmployee struct {
	EmployeeID string      `json:"employee_id"`
	NetPay     money.Cents `json:"net_pay"`
}

type runCommittedPayload struct {
	RunID          string                    `json:"run_id"`
	CompanyID      string                    `json:"company_id"`
	PayPeriodStart string                    `json:"pay_period_start"`
	PayPeriodEnd   string                    `json:"pay_period_end"`
	PayDate        string                    `json:"pay_date"`
	Totals         payroll.RunTotalsResponse `json:"totals"`
	Employees      []committedEmployee       `json:"employees"`
	CommittedAt    time.Time                 `json:"committed_at"`
}

func (s *PayrollServiceImpl) newCommittedEvent(run payroll.Run) (outbox.Event, error) {
	response := payroll.NewRunResponse(run)
	employees := make([]committedEmployee, 0, len(run.LineItems))
	for _, li := range run.LineItems {
		employees = append(employees, committedEmployee{EmployeeID: li.EmployeeID, NetPay: li.NetPay})
	}
	var committedAt time.Time
	if run.CommittedAt != nil {
		committedAt = *run.CommittedAt
	}

	payload, err := json.Marshal(runCommittedPayload{
		RunID:          run.ID,
		CompanyID:      run.CompanyID,
		PayPeriodStart: response.PayPeriodStart,
		PayPeriodEnd:   response.PayPeriodEnd,
		PayDate:        response.PayDate,
		Totals:         response.Totals,
		Employees:      employees,
		CommittedAt:    committedAt,
	})
	if err != nil {
		return outbox.Event{}, fmt.Errorf("failed to encode run committed event: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return outbox.Event{}, fmt.Errorf("failed to generate event id: %w", err)
	}
	return outbox.Event{
		ID:            id.String(),
		CompanyID:     run.CompanyID,
		AggregateType: outbox.AggregatePayrollRun,
		AggregateID:   run.ID,
		EventType:     outbox.EventRunCommitted,
		Topic:         s.eventTopic,
		Payload:       payload,
		Status:        outbox.StatusPending,
	}, nil
}

// CommitRun finalizes a calculated run. The status flip, timesheet payment, ledger
// entry and outbox event share one transaction, so either all happen or none do.
func (s *PayrollServiceImpl) CommitRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollCommit)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var (
		run         payroll.Run
		replayed    bool
		committedAt = s.now()
	)
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		marked, err := s.runRepo.MarkCommitted(ctx, id, p.CompanyID, p.UserID, committedAt)
		if err != nil {
			return err
		}

		run, err = s.runRepo.GetByID(ctx, id, p.CompanyID)
		if err != nil {
			return err
		}
		if !marked {
			switch run.Status {
			case payroll.RunStatusCommitted:
				replayed = true
				return nil
			case payroll.RunStatusCanceled:
				return payroll.ErrRunCanceled
			default:
				return payroll.ErrNotCalculated
			}
		}

		timesheetIDs := run.TimesheetIDs()
		if len(timesheetIDs) > 0 {
			paid, err := s.timesheetRepo.MarkPaid(ctx, p.CompanyID, timesheetIDs, run.ID)
			if err != nil {
				return err
			}
			if paid != int64(len(timesheetIDs)) {
				return payroll.ErrTimesheetAlreadyPaid
			}
		}

		if _, err := s.ledger.RecordRun(ctx, run); err != nil {
			return fmt.Errorf("failed to record tax liabilities: %w", err)
		}

		event, err := s.newCommittedEvent(run)
		if err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, event)
	})
	metrics.RunTransitions.WithLabelValues("commit", metrics.Outcome(err)).Inc()
	if err != nil {
		return payroll.RunResponse{}, err
	}

	if replayed {
		s.logger.Info("payroll run already committed", "company_id", p.CompanyID, "run_id", id)
	} else {
		s.logger.Info("payroll run committed",
			"company_id", p.CompanyID,
			"run_id", run.ID,
			"committed_by", p.UserID,
			"net_pay", run.Totals.NetPay.String(),
		)
	}
	return payroll.NewRunResponse(run), nil
}

func (s *PayrollServiceImpl) CancelRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	p, err := requirePermission(ctx, user.PermissionPayrollRun)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	canceled, err := s.runRepo.MarkCanceled(ctx, id, p.CompanyID, s.now())
	if err == nil && !canceled {
		var current payroll.Run
		current, err = s.runRepo.GetByID(ctx, id, p.CompanyID)
		if err == nil && current.Status == payroll.RunStatusCommitted {
			err = payroll.ErrAlreadyCommitted
		}
	}
	metrics.RunTransitions.WithLabelValues("cancel", metrics.Outcome(err)).Inc()
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.runRepo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if canceled {
		s.logger.Info("payroll run canceled", "company_id", p.CompanyID, "run_id", id)
	}
	return payroll.NewRunResponse(run), nil
}

// payslipPrincipal allows payroll viewers and the employee themselves.
func payslipPrincipal(ctx context.Context, employeeID string) (auth.Principal, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	if p.Can(user.PermissionPayrollView) {
		return p, nil
	}
	if p.Can(user.PermissionPayslipViewOwn) && p.IsEmployee(employeeID) {
		return p, nil
	}
	return auth.Principal{}, payroll.ErrForbidden
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, employeeID string) ([]payroll.PayslipSummary, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		p, err := auth.PrincipalFromContext(ctx)
		if err != nil {
			return nil, err
		}
		if p.EmployeeID == nil {
			return nil, payroll.ErrForbidden
		}
		employeeID = *p.EmployeeID
	}

	p, err := payslipPrincipal(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.runRepo.ListCommittedLineItems(ctx, p.CompanyID, employeeID)
}

func (s *PayrollServiceImpl) loadPayslip(ctx context.Context, runID, employeeID string) (payroll.Run, payroll.LineItem, error) {
	p, err := payslipPrincipal(ctx, employeeID)
	if err != nil {
		return payroll.Run{}, payroll.LineItem{}, err
	}

	run, err := s.runRepo.GetByID(ctx, runID, p.CompanyID)
	if errors.Is(err, payroll.ErrRunNotFound) {
		return payroll.Run{}, payroll.LineItem{}, payroll.ErrPayslipNotFound
	}
	if err != nil {
		return payroll.Run{}, payroll.LineItem{}, err
	}
	if run.Status != payroll.RunStatusCommitted {
		return payroll.Run{}, payroll.LineItem{}, payroll.ErrPayslipNotFound
	}

	item, ok := run.LineItemFor(employeeID)
	if !ok {
		return payroll.Run{}, payroll.LineItem{}, payroll.ErrPayslipNotFound
	}
	return run, item, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, runID, employeeID string) (payroll.PayslipResponse, error) {
	run, item, err := s.loadPayslip(ctx, runID, employeeID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return payroll.PayslipResponse{
		RunID:          run.ID,
		PayPeriodStart: run.PayPeriodStart.Format(dateLayout),
		PayPeriodEnd:   run.PayPeriodEnd.Format(dateLayout),
		PayDate:        run.PayDate.Format(dateLayout),
		LineItem:       payroll.NewLineItemResponse(item),
	}, nil
}

// RenderPayslipPDF stores the payslip PDF once. Committed runs never change, so an
// existing file is returned as is.
func (s *PayrollServiceImpl) RenderPayslipPDF(ctx context.Context, runID, employeeID string) (payroll.PayslipFileResponse, error) {
	run, item, err := s.loadPayslip(ctx, runID, employeeID)
	if err != nil {
		return payroll.PayslipFileResponse{}, err
	}

	key := payslip.Key(run.ID, item.EmployeeID)
	exists, err := s.files.Exists(ctx, key)
	if err != nil {
		return payroll.PayslipFileResponse{}, fmt.Errorf("failed to check payslip file: %w", err)
	}
	if !exists {
		var buf bytes.Buffer
		if err := payslip.Render(&buf, run, item); err != nil {
			return payroll.PayslipFileResponse{}, fmt.Errorf("failed to render payslip: %w", err)
		}
		key, err = s.files.Put(ctx, key, &buf, "application/pdf")
		if err != nil {
			return payroll.PayslipFileResponse{}, fmt.Errorf("failed to store payslip: %w", err)
		}
		s.logger.Info("payslip rendered", "run_id", run.ID, "employee_id", item.EmployeeID, "key", key)
	}

	return payroll.PayslipFileResponse{
		RunID:      run.ID,
		EmployeeID: item.EmployeeID,
		Path:       key,
		URL:        s.files.URL(key),
	}, nil
}
