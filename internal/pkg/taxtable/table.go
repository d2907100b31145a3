// Package taxtable implements payroll.WithholdingLookup from yearly TOML tables
// using the annualized percentage method.
package taxtable

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type Bracket struct {
	Over decimal.Decimal `toml:"over"`
	Rate decimal.Decimal `toml:"rate"`
}

// YearTable holds the annual amounts for one tax year.
type YearTable struct {
	Allowance          decimal.Decimal            `toml:"allowance"`
	SocialSecurityRate decimal.Decimal            `toml:"social_security_rate"`
	MedicareRate       decimal.Decimal            `toml:"medicare_rate"`
	Federal            map[string][]Bracket       `toml:"federal"`
	State              map[string]decimal.Decimal `toml:"state"`
}

type document struct {
	Years map[string]YearTable `toml:"years"`
}

// Tables is safe for concurrent use once loaded.
type Tables struct {
	years map[int]YearTable
}

func Load(path string) (*Tables, error) {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode withholding tables: %w", err)
	}
	return build(doc)
}

// Parse reads tables from TOML text.
func Parse(data string) (*Tables, error) {
	var doc document
	if _, err := toml.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode withholding tables: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Tables, error) {
	if len(doc.Years) == 0 {
		return nil, fmt.Errorf("%w: no tax years defined", ErrInvalidTable)
	}

	t := &Tables{years: make(map[int]YearTable, len(doc.Years))}
	for key, year := range doc.Years {
		taxYear, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: tax year %q", ErrInvalidTable, key)
		}
		if err := year.validate(); err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrInvalidTable, taxYear, err)
		}

		states := make(map[string]decimal.Decimal, len(year.State))
		for code, rate := range year.State {
			states[strings.ToUpper(code)] = rate
		}
		year.State = states
		t.years[taxYear] = year
	}
	return t, nil
}

func (y YearTable) validate() error {
	one := decimal.NewFromInt(1)
	validRate := func(r decimal.Decimal) bool {
		return !r.IsNegative() && r.LessThanOrEqual(one)
	}

	if y.Allowance.IsNegative() {
		return fmt.Errorf("allowance must not be negative")
	}
	if !validRate(y.SocialSecurityRate) || !validRate(y.MedicareRate) {
		return fmt.Errorf("fica rates must be between 0 and 1")
	}
	if len(y.Federal) == 0 {
		return fmt.Errorf("federal brackets are required")
	}
	for status, brackets := range y.Federal {
		if len(brackets) == 0 || !brackets[0].Over.IsZero() {
			return fmt.Errorf("%s brackets must start at 0", status)
		}
		if !sort.SliceIsSorted(brackets, func(i, j int) bool { return brackets[i].Over.LessThan(brackets[j].Over) }) {
			return fmt.Errorf("%s brackets must be ascending", status)
		}
		for _, b := range brackets {
			if !validRate(b.Rate) {
				return fmt.Errorf("%s bracket rate %s out of range", status, b.Rate)
			}
		}
	}
	for code, rate := range y.State {
		if !validRate(rate) {
			return fmt.Errorf("state %s rate out of range", code)
		}
	}
	return nil
}

// Years lists the loaded tax years in ascending order.
func (t *Tables) Years() []int {
	years := make([]int, 0, len(t.years))
	for y := range t.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (t *Tables) Lookup(_ context.Context, req payroll.WithholdingRequest) (payroll.WithholdingAmounts, error) {
	year, ok := t.years[req.TaxYear]
	if !ok {
		return payroll.WithholdingAmounts{}, fmt.Errorf("%w: %d", ErrUnknownTaxYear, req.TaxYear)
	}
	if req.PeriodsPerYear <= 0 {
		return payroll.WithholdingAmounts{}, ErrInvalidPeriods
	}
	brackets, ok := year.Federal[string(req.FilingStatus)]
	if !ok {
		return payroll.WithholdingAmounts{}, fmt.Errorf("%w: %s", ErrUnknownFilingStatus, req.FilingStatus)
	}
	stateRate, ok := year.State[strings.ToUpper(req.Jurisdiction)]
	if !ok {
		return payroll.WithholdingAmounts{}, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, req.Jurisdiction)
	}

	gross := req.GrossPay.Decimal()
	periods := decimal.NewFromInt(int64(req.PeriodsPerYear))

	taxable := gross.Mul(periods).Sub(year.Allowance.Mul(decimal.NewFromInt(int64(req.Allowances))))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	return payroll.WithholdingAmounts{
		Federal:         annualTax(brackets, taxable).Div(periods),
		State:           gross.Mul(stateRate),
		SocialSecurity:  gross.Mul(year.SocialSecurityRate),
		Medicare:        gross.Mul(year.MedicareRate),
		OtherDeductions: decimal.Zero,
	}, nil
}

// annualTax applies marginal rates to the amount above each bracket floor.
func annualTax(brackets []Bracket, taxable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for i, b := range brackets {
		if taxable.LessThanOrEqual(b.Over) {
			break
		}
		upper := taxable
		if i+1 < len(brackets) && brackets[i+1].Over.LessThan(taxable) {
			upper = brackets[i+1].Over
		}
		tax = tax.Add(upper.Sub(b.Over).Mul(b.Rate))
	}
	return tax
}
