package taxliability

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type TaxLiabilityServiceImpl struct {
	ledgerRepo taxliability.LedgerRepository
	now        func() time.Time
	logger     *slog.Logger
}

func NewTaxLiabilityService(ledgerRepo taxliability.LedgerRepository, logger *slog.Logger) taxliability.TaxLiabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxLiabilityServiceImpl{
		ledgerRepo: ledgerRepo,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func requirePermission(ctx context.Context, permission user.Permission) (auth.Principal, error) {
	p, err := auth.PrincipalFromContext(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	if !p.Can(permission) {
		return auth.Principal{}, taxliability.ErrUnauthorized
	}
	return p, nil
}

// entryFor folds a run's line items into its ledger increment.
func entryFor(run payroll.Run, recordedAt time.Time) taxliability.Entry {
	entry := taxliability.Entry{
		RunID:          run.ID,
		CompanyID:      run.CompanyID,
		Period:         taxliability.PeriodOf(run.PayDate),
		PayDate:        run.PayDate,
		StateBreakdown: map[string]money.Cents{},
		RecordedAt:     recordedAt,
	}
	for _, li := range run.LineItems {
		entry.Federal += li.Withholding.Federal
		entry.State += li.Withholding.State
		entry.SocialSecurity += li.Withholding.SocialSecurity
		entry.Medicare += li.Withholding.Medicare
		if li.Withholding.State != 0 {
			entry.StateBreakdown[strings.ToUpper(li.Compensation.WorkState)] += li.Withholding.State
		}
	}
	return entry
}

// RecordRun runs inside the commit transaction of the caller, so the entry and the
// run status change land together.
func (s *TaxLiabilityServiceImpl) RecordRun(ctx context.Context, run payroll.Run) (taxliability.LiabilitiesResponse, error) {
	if run.Status != payroll.RunStatusCommitted {
		return taxliability.LiabilitiesResponse{}, taxliability.ErrRunNotCommitted
	}

	entry := entryFor(run, s.now())
	inserted, err := s.ledgerRepo.InsertEntry(ctx, entry)
	if err != nil {
		return taxliability.LiabilitiesResponse{}, err
	}
	if inserted {
		s.logger.Info("tax liabilities recorded",
			"company_id", run.CompanyID,
			"run_id", run.ID,
			"period", entry.Period.String(),
			"federal", entry.Federal.String(),
			"state", entry.State.String(),
		)
	}

	return s.liabilities(ctx, run.CompanyID, entry.Period)
}

func (s *TaxLiabilityServiceImpl) liabilities(ctx context.Context, companyID string, period taxliability.FilingPeriod) (taxliability.LiabilitiesResponse, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx, companyID, period)
	if err != nil {
		return taxliability.LiabilitiesResponse{}, err
	}
	payments, err := s.ledgerRepo.ListPayments(ctx, companyID, period)
	if err != nil {
		return taxliability.LiabilitiesResponse{}, err
	}
	return taxliability.NewLiabilitiesResponse(taxliability.Aggregate(period, entries, payments)), nil
}

func (s *TaxLiabilityServiceImpl) GetLiabilities(ctx context.Context, period string) (taxliability.LiabilitiesResponse, error) {
	p, err := requirePermission(ctx, user.PermissionTaxLiabilityView)
	if err != nil {
		return taxliability.LiabilitiesResponse{}, err
	}
	fp, err := taxliability.ParseFilingPeriod(period)
	if err != nil {
		return taxliability.LiabilitiesResponse{}, err
	}
	return s.liabilities(ctx, p.CompanyID, fp)
}

func (s *TaxLiabilityServiceImpl) RecordPayment(ctx context.Context, req taxliability.RecordPaymentRequest) (taxliability.PaymentResponse, error) {
	p, err := requirePermission(ctx, user.PermissionTaxLiabilityManage)
	if err != nil {
		return taxliability.PaymentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return taxliability.PaymentResponse{}, err
	}

	period, _ := taxliability.ParseFilingPeriod(req.Period)
	paidAt, _ := validator.IsValidDate(req.PaidAt)

	payment, err := s.ledgerRepo.InsertPayment(ctx, taxliability.Payment{
		CompanyID:  p.CompanyID,
		Period:     period,
		Bucket:     taxliability.Bucket(req.Bucket),
		Amount:     req.Amount,
		Reference:  strings.TrimSpace(req.Reference),
		PaidAt:     paidAt,
		RecordedBy: p.UserID,
	})
	if err != nil {
		return taxliability.PaymentResponse{}, err
	}

	s.logger.Info("tax payment recorded",
		"company_id", p.CompanyID,
		"period", period.String(),
		"bucket", req.Bucket,
		"amount", req.Amount.String(),
	)
	return taxliability.NewPaymentResponse(payment), nil
}
