package taxliability

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type RecordPaymentRequest struct {
	Period    string      `json:"period"`
	Bucket    string      `json:"bucket"`
	Amount    money.Cents `json:"amount"`
	Reference string      `json:"reference"`
	PaidAt    string      `json:"paid_at"`
}

func (r *RecordPaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if p, err := ParseFilingPeriod(r.Period); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: ErrInvalidPeriod.Error()})
	} else if p.IsYear() {
		errs = append(errs, validator.ValidationError{Field: "period", Message: ErrQuarterRequired.Error()})
	}
	if !Bucket(r.Bucket).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "bucket", Message: "bucket must be federal, state or fica"})
	}
	if r.Amount <= 0 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: ErrInvalidPaymentSize.Error()})
	}
	if validator.IsEmpty(r.Reference) {
		errs = append(errs, validator.ValidationError{Field: "reference", Message: "reference is required"})
	}
	if _, ok := validator.IsValidDate(r.PaidAt); !ok {
		errs = append(errs, validator.ValidationError{Field: "paid_at", Message: "paid_at must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AmountsResponse struct {
	Federal money.Cents `json:"federal"`
	State   money.Cents `json:"state"`
	FICA    money.Cents `json:"fica"`
	Total   money.Cents `json:"total"`
}

func newAmountsResponse(a Amounts) AmountsResponse {
	return AmountsResponse{Federal: a.Federal, State: a.State, FICA: a.FICA, Total: a.Total()}
}

type LiabilitiesResponse struct {
	Period         string                 `json:"period"`
	Federal        money.Cents            `json:"federal"`
	State          money.Cents            `json:"state"`
	SocialSecurity money.Cents            `json:"social_security"`
	Medicare       money.Cents            `json:"medicare"`
	FICA           money.Cents            `json:"fica"`
	StateBreakdown map[string]money.Cents `json:"state_breakdown"`
	RunCount       int                    `json:"run_count"`
	Paid           AmountsResponse        `json:"paid"`
	Outstanding    AmountsResponse        `json:"outstanding"`
}

func NewLiabilitiesResponse(l Liabilities) LiabilitiesResponse {
	breakdown := l.StateBreakdown
	if breakdown == nil {
		breakdown = map[string]money.Cents{}
	}
	return LiabilitiesResponse{
		Period:         l.Period.String(),
		Federal:        l.Federal,
		State:          l.State,
		SocialSecurity: l.SocialSecurity,
		Medicare:       l.Medicare,
		FICA:           l.FICA(),
		StateBreakdown: breakdown,
		RunCount:       l.RunCount,
		Paid:           newAmountsResponse(l.Paid),
		Outstanding:    newAmountsResponse(l.Outstanding()),
	}
}

type PaymentResponse struct {
	ID        string      `json:"id"`
	Period    string      `json:"period"`
	Bucket    string      `json:"bucket"`
	Amount    money.Cents `json:"amount"`
	Reference string      `json:"reference"`
	PaidAt    string      `json:"paid_at"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewPaymentResponse(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		Period:    p.Period.String(),
		Bucket:    string(p.Bucket),
		Amount:    p.Amount,
		Reference: p.Reference,
		PaidAt:    p.PaidAt.Format("2006-01-02"),
		CreatedAt: p.CreatedAt,
	}
}
