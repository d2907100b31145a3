package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type taxLiabilityRepositoryImpl struct {
	db *database.DB
}

func NewTaxLiabilityRepository(db *database.DB) taxliability.LedgerRepository {
	return &taxLiabilityRepositoryImpl{db: db}
}

// periodCondition filters on year, and on quarter when the period is a quarter.
func periodCondition(period taxliability.FilingPeriod, args []interface{}) (string, []interface{}) {
	cond := fmt.Sprintf(" AND year = $%d", len(args)+1)
	args = append(args, period.Year)
	if !period.IsYear() {
		cond += fmt.Sprintf(" AND quarter = $%d", len(args)+1)
		args = append(args, period.Quarter)
	}
	return cond, args
}

func (r *taxLiabilityRepositoryImpl) InsertEntry(ctx context.Context, entry taxliability.Entry) (bool, error) {
	q := GetQuerier(ctx, r.db)

	breakdown := make(map[string]int64, len(entry.StateBreakdown))
	for state, amount := range entry.StateBreakdown {
		breakdown[state] = int64(amount)
	}
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return false, fmt.Errorf("failed to encode state breakdown: %w", err)
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO tax_liability_entries (
			run_id, company_id, year, quarter, pay_date,
			federal_cents, state_cents, social_security_cents, medicare_cents, state_breakdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO NOTHING
	`, entry.RunID, entry.CompanyID, entry.Period.Year, entry.Period.Quarter, entry.PayDate,
		int64(entry.Federal), int64(entry.State), int64(entry.SocialSecurity), int64(entry.Medicare), raw,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const ledgerEntryColumns = `
	run_id, company_id, year, quarter, pay_date,
	federal_cents, state_cents, social_security_cents, medicare_cents, state_breakdown, recorded_at`

func scanLedgerEntry(row pgx.Row) (taxliability.Entry, error) {
	var (
		e   taxliability.Entry
		raw []byte
	)
	if err := row.Scan(
		&e.RunID, &e.CompanyID, &e.Period.Year, &e.Period.Quarter, &e.PayDate,
		&e.Federal, &e.State, &e.SocialSecurity, &e.Medicare, &raw, &e.RecordedAt,
	); err != nil {
		return taxliability.Entry{}, err
	}

	var breakdown map[string]int64
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return taxliability.Entry{}, fmt.Errorf("failed to decode state breakdown: %w", err)
	}
	e.StateBreakdown = make(map[string]money.Cents, len(breakdown))
	for state, amount := range breakdown {
		e.StateBreakdown[state] = money.Cents(amount)
	}
	return e, nil
}

func (r *taxLiabilityRepositoryImpl) GetEntry(ctx context.Context, companyID, runID string) (taxliability.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ledgerEntryColumns + ` FROM tax_liability_entries WHERE company_id = $1 AND run_id = $2`

	entry, err := scanLedgerEntry(q.QueryRow(ctx, query, companyID, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taxliability.Entry{}, taxliability.ErrEntryNotFound
		}
		return taxliability.Entry{}, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

func (r *taxLiabilityRepositoryImpl) ListEntries(ctx context.Context, companyID string, period taxliability.FilingPeriod) ([]taxliability.Entry, error) {
	q := GetQuerier(ctx, r.db)

	cond, args := periodCondition(period, []interface{}{companyID})
	rows, err := q.Query(ctx, `SELECT `+ledgerEntryColumns+` FROM tax_liability_entries WHERE company_id = $1`+cond+` ORDER BY pay_date, run_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []taxliability.Entry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

const paymentColumns = `id, company_id, year, quarter, bucket, amount_cents, reference, paid_at, recorded_by, created_at`

func scanPayment(row pgx.Row) (taxliability.Payment, error) {
	var p taxliability.Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.Period.Year, &p.Period.Quarter, &p.Bucket,
		&p.Amount, &p.Reference, &p.PaidAt, &p.RecordedBy, &p.CreatedAt)
	return p, err
}

func (r *taxLiabilityRepositoryImpl) InsertPayment(ctx context.Context, payment taxliability.Payment) (taxliability.Payment, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return taxliability.Payment{}, fmt.Errorf("failed to generate payment id: %w", err)
	}

	query := `
		INSERT INTO tax_liability_payments (id, company_id, year, quarter, bucket, amount_cents, reference, paid_at, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + paymentColumns

	created, err := scanPayment(q.QueryRow(ctx, query,
		id.String(), payment.CompanyID, payment.Period.Year, payment.Period.Quarter, string(payment.Bucket),
		int64(payment.Amount), payment.Reference, payment.PaidAt, payment.RecordedBy,
	))
	if err != nil {
		return taxliability.Payment{}, fmt.Errorf("failed to insert tax payment: %w", err)
	}
	return created, nil
}

func (r *taxLiabilityRepositoryImpl) ListPayments(ctx context.Context, companyID string, period taxliability.FilingPeriod) ([]taxliability.Payment, error) {
	q := GetQuerier(ctx, r.db)

	cond, args := periodCondition(period, []interface{}{companyID})
	rows, err := q.Query(ctx, `SELECT `+paymentColumns+` FROM tax_liability_payments WHERE company_id = $1`+cond+` ORDER BY paid_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax payments: %w", err)
	}
	defer rows.Close()

	var payments []taxliability.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax payments: %w", err)
	}
	return payments, nil
}
