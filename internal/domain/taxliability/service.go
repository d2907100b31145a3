package taxliability

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// Recorder is the write side used inside the run commit transaction.
type Recorder interface {
	// RecordRun applies a committed run once. Re-recording the same run id is a no-op.
	RecordRun(ctx context.Context, run payroll.Run) (LiabilitiesResponse, error)
}

type TaxLiabilityService interface {
	Recorder
	GetLiabilities(ctx context.Context, period string) (LiabilitiesResponse, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (PaymentResponse, error)
}
