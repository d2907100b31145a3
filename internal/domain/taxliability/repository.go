package taxliability

import "context"

type LedgerRepository interface {
	// InsertEntry appends the entry once per run id and reports whether it was new.
	InsertEntry(ctx context.Context, entry Entry) (bool, error)
	GetEntry(ctx context.Context, companyID, runID string) (Entry, error)
	ListEntries(ctx context.Context, companyID string, period FilingPeriod) ([]Entry, error)

	InsertPayment(ctx context.Context, payment Payment) (Payment, error)
	ListPayments(ctx context.Context, companyID string, period FilingPeriod) ([]Payment, error)
}
