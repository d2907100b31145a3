// Package payslip renders a committed line item as a one-page PDF.
package payslip

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

const dateLayout = "2006-01-02"

// Key is the storage key of a rendered payslip.
func Key(runID, employeeID string) string {
	return fmt.Sprintf("payslips/%s/%s.pdf", runID, employeeID)
}

func Render(w io.Writer, run payroll.Run, item payroll.LineItem) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+item.EmployeeName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", item.EmployeeName, item.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", run.PayPeriodStart.Format(dateLayout), run.PayPeriodEnd.Format(dateLayout)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Pay date: %s   Run: %s", run.PayDate.Format(dateLayout), run.ID))
	pdf.Ln(10)

	section(pdf, "Hours")
	row(pdf, "Regular", item.Hours.Regular.StringFixed(2))
	row(pdf, "Overtime", item.Hours.Overtime.StringFixed(2))
	row(pdf, "Holiday", item.Hours.Holiday.StringFixed(2))
	pdf.Ln(4)

	section(pdf, "Earnings")
	c := item.Compensation
	if c.AnnualSalary != nil {
		row(pdf, "Annual salary", c.AnnualSalary.String())
	}
	if c.HourlyRate != nil {
		row(pdf, "Hourly rate", c.HourlyRate.String())
	}
	row(pdf, "Gross pay", item.GrossPay.String())
	pdf.Ln(4)

	section(pdf, "Withholding")
	wh := item.Withholding
	row(pdf, "Federal income tax", wh.Federal.String())
	row(pdf, fmt.Sprintf("State income tax (%s)", c.WorkState), wh.State.String())
	row(pdf, "Social security", wh.SocialSecurity.String())
	row(pdf, "Medicare", wh.Medicare.String())
	if wh.OtherDeductions != 0 {
		row(pdf, "Other deductions", wh.OtherDeductions.String())
	}
	row(pdf, "Total withholding", wh.Total().String())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	row(pdf, "Net pay", item.NetPay.String())

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(100, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, value, "", 1, "R", false, 0, "")
}
