package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

type entryRow struct {
	WorkDate      string          `json:"work_date"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	BreakMinutes  int             `json:"break_minutes"`
	Notes         string          `json:"notes,omitempty"`
}

func encodeEntries(entries []timesheet.Entry) ([]byte, error) {
	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryRow{
			WorkDate:      e.WorkDate.Format("2006-01-02"),
			RegularHours:  e.RegularHours,
			OvertimeHours: e.OvertimeHours,
			HolidayHours:  e.HolidayHours,
			BreakMinutes:  e.BreakMinutes,
			Notes:         e.Notes,
		})
	}
	return json.Marshal(rows)
}

func decodeEntries(raw []byte) ([]timesheet.Entry, error) {
	var rows []entryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	entries := make([]timesheet.Entry, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.WorkDate)
		if err != nil {
			return nil, err
		}
		entries = append(entries, timesheet.Entry{
			WorkDate:      date,
			RegularHours:  r.RegularHours,
			OvertimeHours: r.OvertimeHours,
			HolidayHours:  r.HolidayHours,
			BreakMinutes:  r.BreakMinutes,
			Notes:         r.Notes,
		})
	}
	return entries, nil
}

const timesheetColumns = `
	id, company_id, employee_id, week_starting, entries,
	regular_hours, overtime_hours, holiday_hours, break_minutes, status,
	submitted_at, approved_at, approved_by, rejected_at, rejected_by, rejection_reason,
	paid_run_id, created_at, updated_at`

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var (
		t   timesheet.Timesheet
		raw []byte
	)
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.EmployeeID, &t.WeekStarting, &raw,
		&t.Totals.RegularHours, &t.Totals.OvertimeHours, &t.Totals.HolidayHours, &t.Totals.BreakMinutes, &t.Status,
		&t.SubmittedAt, &t.ApprovedAt, &t.ApprovedBy, &t.RejectedAt, &t.RejectedBy, &t.RejectionReason,
		&t.PaidRunID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	if t.Entries, err = decodeEntries(raw); err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to decode timesheet entries: %w", err)
	}
	return t, nil
}

func (r *timesheetRepositoryImpl) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to generate timesheet id: %w", err)
	}
	raw, err := encodeEntries(ts.Entries)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to encode timesheet entries: %w", err)
	}

	query := `
		INSERT INTO timesheets (
			id, company_id, employee_id, week_starting, entries,
			regular_hours, overtime_hours, holiday_hours, break_minutes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + timesheetColumns

	created, err := scanTimesheet(q.QueryRow(ctx, query,
		id.String(), ts.CompanyID, ts.EmployeeID, ts.WeekStarting, raw,
		ts.Totals.RegularHours, ts.Totals.OvertimeHours, ts.Totals.HolidayHours, ts.Totals.BreakMinutes, ts.Status,
	))
	if err != nil {
		if isUniqueViolation(err, "timesheets_employee_week_key") {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetExists
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to create timesheet: %w", err)
	}
	return created, nil
}

func (r *timesheetRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1 AND company_id = $2`

	found, err := scanTimesheet(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}
	return found, nil
}

func (r *timesheetRepositoryImpl) GetByEmployeeWeek(ctx context.Context, companyID, employeeID string, weekStarting time.Time) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE company_id = $1 AND employee_id = $2 AND week_starting = $3`

	found, err := scanTimesheet(q.QueryRow(ctx, query, companyID, employeeID, weekStarting))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet by week: %w", err)
	}
	return found, nil
}

func (r *timesheetRepositoryImpl) List(ctx context.Context, companyID string, filter timesheet.TimesheetFilter) ([]timesheet.Timesheet, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("week_starting >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("week_starting <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM timesheets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timesheets: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM timesheets WHERE %s ORDER BY week_starting DESC, employee_id LIMIT $%d OFFSET $%d`,
		timesheetColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	timesheets, err := collectTimesheets(rows)
	if err != nil {
		return nil, 0, err
	}
	return timesheets, total, nil
}

func collectTimesheets(rows pgx.Rows) ([]timesheet.Timesheet, error) {
	var result []timesheet.Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheets: %w", err)
	}
	return result, nil
}

func (r *timesheetRepositoryImpl) UpdateEntries(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	raw, err := encodeEntries(ts.Entries)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to encode timesheet entries: %w", err)
	}

	query := `
		UPDATE timesheets SET
			entries = $3, regular_hours = $4, overtime_hours = $5, holiday_hours = $6,
			break_minutes = $7, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status IN ('draft', 'rejected')
		RETURNING ` + timesheetColumns

	updated, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.ID, ts.CompanyID, raw,
		ts.Totals.RegularHours, ts.Totals.OvertimeHours, ts.Totals.HolidayHours, ts.Totals.BreakMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetLocked
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to update timesheet entries: %w", err)
	}
	return updated, nil
}

func (r *timesheetRepositoryImpl) Transition(ctx context.Context, ts timesheet.Timesheet, from []timesheet.Status) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	fromStatuses := make([]string, 0, len(from))
	for _, s := range from {
		fromStatuses = append(fromStatuses, string(s))
	}

	query := `
		UPDATE timesheets SET
			status = $3, submitted_at = $4, approved_at = $5, approved_by = $6,
			rejected_at = $7, rejected_by = $8, rejection_reason = $9, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = ANY($10)
		RETURNING ` + timesheetColumns

	updated, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.ID, ts.CompanyID, ts.Status, ts.SubmittedAt, ts.ApprovedAt, ts.ApprovedBy,
		ts.RejectedAt, ts.RejectedBy, ts.RejectionReason, fromStatuses,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to transition timesheet: %w", err)
	}
	return updated, nil
}

func (r *timesheetRepositoryImpl) ListApprovedOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE company_id = $1
			AND status = 'approved'
			AND week_starting <= $3
			AND week_starting + 6 >= $2
		ORDER BY employee_id, week_starting
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved timesheets: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

func (r *timesheetRepositoryImpl) MarkPaid(ctx context.Context, companyID string, ids []string, runID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE timesheets
		SET status = 'paid', paid_run_id = $3, updated_at = NOW()
		WHERE id = ANY($1) AND company_id = $2 AND status = 'approved'
	`, ids, companyID, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark timesheets paid: %w", err)
	}
	return tag.RowsAffected(), nil
}
