package payslip

import (
	"bytes"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	rate := money.Cents(2500)
	run := payroll.Run{
		ID:             "run-1",
		PayPeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PayPeriodEnd:   time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		PayDate:        time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}
	item := payroll.LineItem{
		EmployeeID:   "emp-1",
		EmployeeName: "Dana Reyes",
		Hours: payroll.HoursBreakdown{
			Regular:  decimal.NewFromInt(40),
			Overtime: decimal.NewFromInt(5),
		},
		Compensation: payroll.CompensationSnapshot{
			CompensationType: employee.CompensationHourly,
			HourlyRate:       &rate,
			WorkState:        "CA",
		},
		GrossPay:    118750,
		Withholding: payroll.Withholding{Federal: 23750, State: 5938, SocialSecurity: 9084},
		NetPay:      79978,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, run, item))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "payslips/run-1/emp-1.pdf", Key("run-1", "emp-1"))
}
