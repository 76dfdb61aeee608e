package compensation

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type statementLine struct {
	label  string
	detail string
	amount decimal.Decimal
}

// RenderStatement writes a one-page PDF of the breakdown to w.
func RenderStatement(w io.Writer, comp Compensation, generatedAt time.Time) error {
	tpl := comp.Template
	b := comp.Breakdown

	earnings := []statementLine{
		{"Basic salary", pct(tpl.BasicPercentage) + " of wage", b.BasicSalary},
		{"House rent allowance", pct(tpl.HRAPercentage) + " of basic", b.HRA},
		{"Standard allowance", "fixed", b.StandardAllowance},
		{"Performance bonus", pct(tpl.PerformanceBonusPercentage) + " of basic", b.PerformanceBonus},
		{"Leave travel allowance", pct(tpl.LeaveTravelAllowancePercentage) + " of basic", b.LeaveTravelAllowance},
		{"Food allowance", "fixed", b.FoodAllowance},
	}
	deductions := []statementLine{
		{"Provident fund (employee)", pct(tpl.PFEmployeePercentage) + " of basic", b.PFEmployee},
		{"Professional tax", "fixed", b.ProfessionalTax},
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Compensation statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", comp.EmployeeName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Monthly wage: %s   Yearly wage: %s", money(tpl.MonthlyWage), money(b.YearlyWage)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Working schedule: %s days/week, %s hours/day", tpl.WorkingDaysPerWeek.String(), tpl.WorkingHoursPerDay.String()))
	pdf.Ln(10)

	earningsDrift := writeSection(pdf, "Earnings", earnings, "Total earnings", b.TotalEarnings)
	deductionsDrift := writeSection(pdf, "Deductions", deductions, "Total deductions", b.TotalDeductions)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 8, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, money(b.NetSalary), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Employer provident fund contribution (not deducted): %s", money(b.PFEmployer)))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Each line is rounded to the cent on its own. Totals are rounded from the unrounded amounts.")
	pdf.Ln(5)
	if !earningsDrift.IsZero() || !deductionsDrift.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Rounding difference against the listed lines: earnings %s, deductions %s",
			money(earningsDrift), money(deductionsDrift)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, "Generated "+generatedAt.Format(time.RFC3339))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("compensation: render statement: %w", err)
	}
	return nil
}

// writeSection prints the lines and their total and returns how far the total
// is from the sum of the printed lines.
func writeSection(pdf *gofpdf.Fpdf, title string, lines []statementLine, totalLabel string, total decimal.Decimal) decimal.Decimal {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.CellFormat(80, 7, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, line.detail, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, money(line.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 7, totalLabel, "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, money(total), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
	return roundingDrift(lines, total)
}

func roundingDrift(lines []statementLine, total decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.amount)
	}
	return total.Sub(sum)
}

func money(v decimal.Decimal) string {
	return v.StringFixed(MoneyPlaces)
}

func pct(v decimal.Decimal) string {
	return v.StringFixed(PercentPlaces) + "%"
}
