package payroll

import (
	"context"
	"time"
)

type RunRepository interface {
	Create(ctx context.Context, run Run) (Run, error)
	// GetByID loads the run with its line items and exclusions.
	GetByID(ctx context.Context, id string, companyID string) (Run, error)
	List(ctx context.Context, companyID string, filter RunFilter) ([]Run, int64, error)

	// SaveCalculation replaces line items, exclusions and totals and sets status calculated,
	// guarded on the stored status being setup or calculated. It reports whether the guard matched.
	SaveCalculation(ctx context.Context, run Run) (bool, error)

	// MarkCommitted sets status committed only where status is calculated.
	MarkCommitted(ctx context.Context, id, companyID, committedBy string, at time.Time) (bool, error)

	// MarkCanceled sets status canceled only where status is setup or calculated.
	MarkCanceled(ctx context.Context, id, companyID string, at time.Time) (bool, error)

	ListCommittedLineItems(ctx context.Context, companyID, employeeID string) ([]PayslipSummary, error)
}
