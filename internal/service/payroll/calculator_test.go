package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payDate = time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

func hours(regular, overtime, holiday string) payroll.HoursBreakdown {
	return payroll.HoursBreakdown{
		Regular:  decimal.RequireFromString(regular),
		Overtime: decimal.RequireFromString(overtime),
		Holiday:  decimal.RequireFromString(holiday),
	}
}

func TestNewCalculator_RejectsUnknownFrequency(t *testing.T) {
	_, err := NewCalculator(newFlatLookup(), payroll.PayFrequency("fortnightly-ish"))
	assert.Error(t, err)
}

func TestCalculator_HolidayHoursAtBaseRate(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayWeekly)
	require.NoError(t, err)

	gross, err := calc.GrossPay(hourlyEmployee("emp-1", "E1", "CA", 2000), hours("32", "0", "8"))
	require.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(800)), gross.String())
}

func TestCalculator_AdditionalWithholdingGoesToFederal(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayWeekly)
	require.NoError(t, err)

	emp := hourlyEmployee("emp-1", "E1", "CA", 2500)
	emp.AdditionalWithholding = money.Cents(1000)

	item, err := calc.Calculate(context.Background(), emp, hours("40", "5", "0"), payDate)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(24750), item.Withholding.Federal)
	assert.Equal(t, money.Cents(78978), item.NetPay)
	assert.Equal(t, 52, item.Compensation.PeriodsPerYear)
}

func TestCalculator_WithholdingAboveGrossIsInvalid(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayWeekly)
	require.NoError(t, err)

	emp := hourlyEmployee("emp-1", "E1", "CA", 1000)
	emp.AdditionalWithholding = money.Cents(50000)

	_, err = calc.Calculate(context.Background(), emp, hours("10", "0", "0"), payDate)
	assert.ErrorIs(t, err, payroll.ErrInvalidCompensationState)
}

func TestCalculator_NegativeHoursAreInvalid(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayWeekly)
	require.NoError(t, err)

	_, err = calc.Calculate(context.Background(), hourlyEmployee("emp-1", "E1", "CA", 1000), hours("-1", "0", "0"), payDate)
	assert.ErrorIs(t, err, payroll.ErrInvalidCompensationState)
}

func TestCalculator_SnapshotIsDetached(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayWeekly)
	require.NoError(t, err)

	emp := hourlyEmployee("emp-1", "E1", "CA", 2500)
	item, err := calc.Calculate(context.Background(), emp, hours("1", "0", "0"), payDate)
	require.NoError(t, err)

	*emp.HourlyRate = 9999
	require.NotNil(t, item.Compensation.HourlyRate)
	assert.Equal(t, money.Cents(2500), *item.Compensation.HourlyRate)
}

func TestCalculator_SumWeeksAppliesFortyHoursPerWeek(t *testing.T) {
	calc, err := NewCalculator(newFlatLookup(), payroll.PayBiweekly)
	require.NoError(t, err)

	weeks := []payroll.HoursBreakdown{hours("44", "1", "0"), hours("38", "0", "8")}

	// 82 regular hours over two weeks: only the 4 above 40 in the first week are overtime
	nonExempt := calc.SumWeeks(salariedEmployee("emp-1", "E1", 5_200_000, true), weeks)
	assert.True(t, nonExempt.Regular.Equal(decimal.NewFromInt(78)), nonExempt.Regular.String())
	assert.True(t, nonExempt.Overtime.Equal(decimal.NewFromInt(5)), nonExempt.Overtime.String())
	assert.True(t, nonExempt.Holiday.Equal(decimal.NewFromInt(8)), nonExempt.Holiday.String())

	gross, err := calc.GrossPay(salariedEmployee("emp-1", "E1", 5_200_000, true), nonExempt)
	require.NoError(t, err)
	// 52000/26 = 2000 plus 5 × 25 × 1.5
	assert.True(t, gross.Equal(decimal.RequireFromString("2187.5")), gross.String())

	exempt := calc.SumWeeks(salariedEmployee("emp-2", "E2", 5_200_000, false), weeks)
	assert.True(t, exempt.Regular.Equal(decimal.NewFromInt(82)), exempt.Regular.String())
	assert.True(t, exempt.Overtime.Equal(decimal.NewFromInt(1)), exempt.Overtime.String())

	hourly := calc.SumWeeks(hourlyEmployee("emp-3", "E3", "CA", 2000), weeks)
	assert.True(t, hourly.Regular.Equal(decimal.NewFromInt(82)), hourly.Regular.String())
}
