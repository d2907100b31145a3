package payroll

import "context"

// PayrollService is the run orchestrator. All operations act in the tenant of the request principal.
type PayrollService interface {
	CreateRun(ctx context.Context, req CreateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunResponse, error)
	CalculateRun(ctx context.Context, id string) (RunResponse, error)
	// CommitRun is idempotent on the run id.
	CommitRun(ctx context.Context, id string) (RunResponse, error)
	CancelRun(ctx context.Context, id string) (RunResponse, error)

	ListPayslips(ctx context.Context, employeeID string) ([]PayslipSummary, error)
	GetPayslip(ctx context.Context, runID, employeeID string) (PayslipResponse, error)
	RenderPayslipPDF(ctx context.Context, runID, employeeID string) (PayslipFileResponse, error)
}
