package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type WithholdingRequest struct {
	GrossPay       money.Cents
	PeriodsPerYear int
	FilingStatus   employee.FilingStatus
	Allowances     int
	Jurisdiction   string
	TaxYear        int
}

// WithholdingAmounts are unrounded per-period amounts. Rounding happens once, when the line item is stored.
type WithholdingAmounts struct {
	Federal         decimal.Decimal
	State           decimal.Decimal
	SocialSecurity  decimal.Decimal
	Medicare        decimal.Decimal
	OtherDeductions decimal.Decimal
}

// WithholdingLookup resolves bracket and rate tables for a tax year.
type WithholdingLookup interface {
	Lookup(ctx context.Context, req WithholdingRequest) (WithholdingAmounts, error)
}
