package taxtable

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleTables = `
[years.2026]
allowance = "1000"
social_security_rate = "0.062"
medicare_rate = "0.0145"

[[years.2026.federal.single]]
over = "0"
rate = "0"
[[years.2026.federal.single]]
over = "10000"
rate = "0.10"
[[years.2026.federal.single]]
over = "50000"
rate = "0.20"

[years.2026.state]
ca = "0.05"
TX = "0"
`

func TestParse_NormalizesStateCodes(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	assert.Equal(t, []int{2026}, tables.Years())

	amounts, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
		GrossPay:       money.Cents(100000),
		PeriodsPerYear: 52,
		FilingStatus:   employee.FilingSingle,
		Jurisdiction:   "CA",
		TaxYear:        2026,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(amounts.State), amounts.State.String())
}

func TestLookup_PercentageMethod(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	// 1000/week -> 52000/yr, minus 2 allowances -> 50000 taxable.
	// 40000 * 10% = 4000/yr -> 76.923.../week.
	amounts, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
		GrossPay:       money.Cents(100000),
		PeriodsPerYear: 52,
		FilingStatus:   employee.FilingSingle,
		Allowances:     2,
		Jurisdiction:   "TX",
		TaxYear:        2026,
	})
	require.NoError(t, err)

	assert.Equal(t, money.Cents(7692), money.FromDecimal(amounts.Federal))
	assert.True(t, amounts.State.IsZero())
	assert.Equal(t, money.Cents(6200), money.FromDecimal(amounts.SocialSecurity))
	assert.Equal(t, money.Cents(1450), money.FromDecimal(amounts.Medicare))
	assert.True(t, amounts.OtherDeductions.IsZero())
}

func TestLookup_CrossesBrackets(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	// 60000/yr: 40000*10% + 10000*20% = 6000 -> 500/month.
	amounts, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
		GrossPay:       money.Cents(500000),
		PeriodsPerYear: 12,
		FilingStatus:   employee.FilingSingle,
		Jurisdiction:   "TX",
		TaxYear:        2026,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(50000), money.FromDecimal(amounts.Federal))
}

func TestLookup_FICAIsFlatOnPeriodGross(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	// 250000/yr annualized is above the social security wage base; the rate still applies in full.
	amounts, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
		GrossPay:       money.Cents(2083333),
		PeriodsPerYear: 12,
		FilingStatus:   employee.FilingSingle,
		Jurisdiction:   "TX",
		TaxYear:        2026,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(129167), money.FromDecimal(amounts.SocialSecurity))
	assert.Equal(t, money.Cents(30208), money.FromDecimal(amounts.Medicare))
}

func TestLookup_AllowancesFloorAtZero(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	amounts, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
		GrossPay:       money.Cents(10000),
		PeriodsPerYear: 52,
		FilingStatus:   employee.FilingSingle,
		Allowances:     10,
		Jurisdiction:   "TX",
		TaxYear:        2026,
	})
	require.NoError(t, err)
	assert.True(t, amounts.Federal.IsZero())
}

func TestLookup_Errors(t *testing.T) {
	tables, err := Parse(simpleTables)
	require.NoError(t, err)

	base := payroll.WithholdingRequest{
		GrossPay:       money.Cents(100000),
		PeriodsPerYear: 52,
		FilingStatus:   employee.FilingSingle,
		Jurisdiction:   "TX",
		TaxYear:        2026,
	}

	tests := []struct {
		name    string
		mutate  func(r *payroll.WithholdingRequest)
		wantErr error
	}{
		{"unknown year", func(r *payroll.WithholdingRequest) { r.TaxYear = 1999 }, ErrUnknownTaxYear},
		{"unknown filing status", func(r *payroll.WithholdingRequest) { r.FilingStatus = employee.FilingMarried }, ErrUnknownFilingStatus},
		{"unknown state", func(r *payroll.WithholdingRequest) { r.Jurisdiction = "ZZ" }, ErrUnknownJurisdiction},
		{"zero periods", func(r *payroll.WithholdingRequest) { r.PeriodsPerYear = 0 }, ErrInvalidPeriods},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := tables.Lookup(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_RejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"bad year", `
[years.abc]
allowance = "0"
[[years.abc.federal.single]]
over = "0"
rate = "0"
`},
		{"brackets not starting at zero", `
[years.2026]
allowance = "0"
[[years.2026.federal.single]]
over = "100"
rate = "0.1"
`},
		{"descending brackets", `
[years.2026]
allowance = "0"
[[years.2026.federal.single]]
over = "0"
rate = "0"
[[years.2026.federal.single]]
over = "500"
rate = "0.1"
[[years.2026.federal.single]]
over = "100"
rate = "0.2"
`},
		{"rate above one", `
[years.2026]
allowance = "0"
[[years.2026.federal.single]]
over = "0"
rate = "1.5"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestLoad_ShippedTables(t *testing.T) {
	tables, err := Load("../../../configs/withholding.toml")
	require.NoError(t, err)
	assert.Contains(t, tables.Years(), 2026)

	for _, status := range []employee.FilingStatus{employee.FilingSingle, employee.FilingMarried, employee.FilingHeadOfHousehold} {
		_, err := tables.Lookup(context.Background(), payroll.WithholdingRequest{
			GrossPay:       money.Cents(250000),
			PeriodsPerYear: 26,
			FilingStatus:   status,
			Jurisdiction:   "NY",
			TaxYear:        2026,
		})
		assert.NoError(t, err, status)
	}
}
