package fixtures

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDemoEmployees_CompensationIsConsistent(t *testing.T) {
	for _, emp := range GetDemoEmployees("company-1", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)) {
		assert.NoError(t, emp.CheckCompensation(), emp.EmployeeCode)
		assert.True(t, emp.FilingStatus.IsValid(), emp.EmployeeCode)
	}
}

func TestGetDemoTimesheet(t *testing.T) {
	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	employees := GetDemoEmployees("company-1", week)

	ts, ok := GetDemoTimesheet(employees[0], week)
	require.True(t, ok)
	assert.True(t, ts.Totals.RegularHours.Equal(decimal.NewFromInt(40)))
	assert.True(t, ts.Totals.OvertimeHours.Equal(decimal.NewFromInt(5)))

	_, ok = GetDemoTimesheet(employees[3], week)
	assert.False(t, ok, "inactive employee gets no week")
}
