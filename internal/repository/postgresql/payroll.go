package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.RunRepository {
	return &payrollRepositoryImpl{db: db}
}

type compensationRow struct {
	CompensationType      string `json:"compensation_type"`
	AnnualSalaryCents     *int64 `json:"annual_salary_cents,omitempty"`
	HourlyRateCents       *int64 `json:"hourly_rate_cents,omitempty"`
	NonExempt             bool   `json:"non_exempt"`
	FilingStatus          string `json:"filing_status"`
	Allowances            int    `json:"allowances"`
	AdditionalWithholding int64  `json:"additional_withholding_cents"`
	WorkState             string `json:"work_state"`
	PeriodsPerYear        int    `json:"periods_per_year"`
}

func encodeCompensation(c payroll.CompensationSnapshot) ([]byte, error) {
	return json.Marshal(compensationRow{
		CompensationType:      string(c.CompensationType),
		AnnualSalaryCents:     centsArg(c.AnnualSalary),
		HourlyRateCents:       centsArg(c.HourlyRate),
		NonExempt:             c.NonExempt,
		FilingStatus:          string(c.FilingStatus),
		Allowances:            c.Allowances,
		AdditionalWithholding: int64(c.AdditionalWithholding),
		WorkState:             c.WorkState,
		PeriodsPerYear:        c.PeriodsPerYear,
	})
}

func decodeCompensation(raw []byte) (payroll.CompensationSnapshot, error) {
	var row compensationRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return payroll.CompensationSnapshot{}, err
	}
	return payroll.CompensationSnapshot{
		CompensationType:      employee.CompensationType(row.CompensationType),
		AnnualSalary:          centsFromNullable(row.AnnualSalaryCents),
		HourlyRate:            centsFromNullable(row.HourlyRateCents),
		NonExempt:             row.NonExempt,
		FilingStatus:          employee.FilingStatus(row.FilingStatus),
		Allowances:            row.Allowances,
		AdditionalWithholding: money.Cents(row.AdditionalWithholding),
		WorkState:             row.WorkState,
		PeriodsPerYear:        row.PeriodsPerYear,
	}, nil
}

const runColumns = `
	id, company_id, pay_period_start, pay_period_end, pay_date, status,
	gross_cents, federal_cents, state_cents, social_security_cents, medicare_cents,
	other_deductions_cents, net_cents, employee_count, excluded_count,
	created_by, calculated_at, committed_at, committed_by, canceled_at, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var r payroll.Run
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.PayPeriodStart, &r.PayPeriodEnd, &r.PayDate, &r.Status,
		&r.Totals.GrossPay, &r.Totals.Federal, &r.Totals.State, &r.Totals.SocialSecurity, &r.Totals.Medicare,
		&r.Totals.OtherDeductions, &r.Totals.NetPay, &r.Totals.EmployeeCount, &r.Totals.ExcludedCount,
		&r.CreatedBy, &r.CalculatedAt, &r.CommittedAt, &r.CommittedBy, &r.CanceledAt, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (r *payrollRepositoryImpl) Create(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to generate run id: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (id, company_id, pay_period_start, pay_period_end, pay_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		id.String(), run.CompanyID, run.PayPeriodStart, run.PayPeriodEnd, run.PayDate, run.Status, run.CreatedBy,
	))
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	if run.LineItems, err = r.listLineItems(ctx, q, run.ID); err != nil {
		return payroll.Run{}, err
	}
	if run.Excluded, err = r.listExclusions(ctx, q, run.ID); err != nil {
		return payroll.Run{}, err
	}
	return run, nil
}

func (r *payrollRepositoryImpl) listLineItems(ctx context.Context, q database.Querier, runID string) ([]payroll.LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, run_id, employee_id, employee_name, regular_hours, overtime_hours, holiday_hours,
			compensation, gross_cents, federal_cents, state_cents, social_security_cents, medicare_cents,
			other_deductions_cents, net_cents, timesheet_ids, tax_year, created_at
		FROM payroll_line_items
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []payroll.LineItem
	for rows.Next() {
		var (
			li  payroll.LineItem
			raw []byte
		)
		if err := rows.Scan(
			&li.ID, &li.RunID, &li.EmployeeID, &li.EmployeeName,
			&li.Hours.Regular, &li.Hours.Overtime, &li.Hours.Holiday,
			&raw, &li.GrossPay, &li.Withholding.Federal, &li.Withholding.State,
			&li.Withholding.SocialSecurity, &li.Withholding.Medicare, &li.Withholding.OtherDeductions,
			&li.NetPay, &li.TimesheetIDs, &li.TaxYear, &li.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if li.Compensation, err = decodeCompensation(raw); err != nil {
			return nil, fmt.Errorf("failed to decode compensation snapshot: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}

func (r *payrollRepositoryImpl) listExclusions(ctx context.Context, q database.Querier, runID string) ([]payroll.Exclusion, error) {
	rows, err := q.Query(ctx, `
		SELECT employee_id, employee_name, reason, detail
		FROM payroll_exclusions
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusions: %w", err)
	}
	defer rows.Close()

	var excluded []payroll.Exclusion
	for rows.Next() {
		var ex payroll.Exclusion
		if err := rows.Scan(&ex.EmployeeID, &ex.EmployeeName, &ex.Reason, &ex.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan exclusion: %w", err)
		}
		excluded = append(excluded, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exclusions: %w", err)
	}
	return excluded, nil
}

func (r *payrollRepositoryImpl) List(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "company_id = $1"
	args := []interface{}{companyID}
	if filter.Status != nil {
		where += " AND status = $2"
		args = append(args, *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_runs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs WHERE %s ORDER BY pay_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		runColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}
	return runs, total, nil
}

// SaveCalculation must run inside a transaction so the delete and re-insert of
// line items is atomic with the status guard.
func (r *payrollRepositoryImpl) SaveCalculation(ctx context.Context, run payroll.Run) (bool, error) {
	q := GetQuerier(ctx, r.db)
	t := run.Totals

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs SET
			status = 'calculated',
			gross_cents = $3, federal_cents = $4, state_cents = $5, social_security_cents = $6,
			medicare_cents = $7, other_deductions_cents = $8, net_cents = $9,
			employee_count = $10, excluded_count = $11, calculated_at = $12, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status IN ('setup', 'calculated')
	`, run.ID, run.CompanyID,
		int64(t.GrossPay), int64(t.Federal), int64(t.State), int64(t.SocialSecurity),
		int64(t.Medicare), int64(t.OtherDeductions), int64(t.NetPay),
		t.EmployeeCount, t.ExcludedCount, run.CalculatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save run totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := q.Exec(ctx, `DELETE FROM payroll_line_items WHERE run_id = $1`, run.ID); err != nil {
		return false, fmt.Errorf("failed to clear line items: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM payroll_exclusions WHERE run_id = $1`, run.ID); err != nil {
		return false, fmt.Errorf("failed to clear exclusions: %w", err)
	}

	for i, li := range run.LineItems {
		id, err := uuid.NewV7()
		if err != nil {
			return false, fmt.Errorf("failed to generate line item id: %w", err)
		}
		raw, err := encodeCompensation(li.Compensation)
		if err != nil {
			return false, fmt.Errorf("failed to encode compensation snapshot: %w", err)
		}
		w := li.Withholding
		if _, err := q.Exec(ctx, `
			INSERT INTO payroll_line_items (
				id, run_id, company_id, employee_id, employee_name, position,
				regular_hours, overtime_hours, holiday_hours, compensation,
				gross_cents, federal_cents, state_cents, social_security_cents, medicare_cents,
				other_deductions_cents, net_cents, timesheet_ids, tax_year
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`, id.String(), run.ID, run.CompanyID, li.EmployeeID, li.EmployeeName, i,
			li.Hours.Regular, li.Hours.Overtime, li.Hours.Holiday, raw,
			int64(li.GrossPay), int64(w.Federal), int64(w.State), int64(w.SocialSecurity), int64(w.Medicare),
			int64(w.OtherDeductions), int64(li.NetPay), li.TimesheetIDs, li.TaxYear,
		); err != nil {
			return false, fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	for i, ex := range run.Excluded {
		if _, err := q.Exec(ctx, `
			INSERT INTO payroll_exclusions (run_id, employee_id, employee_name, position, reason, detail)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.ID, ex.EmployeeID, ex.EmployeeName, i, string(ex.Reason), ex.Detail); err != nil {
			return false, fmt.Errorf("failed to insert exclusion: %w", err)
		}
	}

	return true, nil
}

func (r *payrollRepositoryImpl) MarkCommitted(ctx context.Context, id, companyID, committedBy string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs
		SET status = 'committed', committed_at = $3, committed_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'calculated'
	`, id, companyID, at, committedBy)
	if err != nil {
		return false, fmt.Errorf("failed to commit payroll run: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *payrollRepositoryImpl) MarkCanceled(ctx context.Context, id, companyID string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs
		SET status = 'canceled', canceled_at = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status IN ('setup', 'calculated')
	`, id, companyID, at)
	if err != nil {
		return false, fmt.Errorf("failed to cancel payroll run: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *payrollRepositoryImpl) ListCommittedLineItems(ctx context.Context, companyID, employeeID string) ([]payroll.PayslipSummary, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT li.run_id, li.employee_id, li.employee_name, pr.pay_period_start, pr.pay_period_end,
			pr.pay_date, li.gross_cents, li.net_cents
		FROM payroll_line_items li
		JOIN payroll_runs pr ON pr.id = li.run_id
		WHERE li.company_id = $1 AND li.employee_id = $2 AND pr.status = 'committed'
		ORDER BY pr.pay_date DESC
	`, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var summaries []payroll.PayslipSummary
	for rows.Next() {
		var s payroll.PayslipSummary
		if err := rows.Scan(&s.RunID, &s.EmployeeID, &s.EmployeeName, &s.PayPeriodStart, &s.PayPeriodEnd,
			&s.PayDate, &s.GrossPay, &s.NetPay); err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslips: %w", err)
	}
	return summaries, nil
}
