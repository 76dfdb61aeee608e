package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template is the stored, editable compensation input for one employee.
// Derived amounts never live here; see Breakdown.
type Template struct {
	EmployeeID                     string          `json:"employeeId"`
	MonthlyWage                    decimal.Decimal `json:"monthlyWage"`
	WorkingDaysPerWeek             decimal.Decimal `json:"workingDaysPerWeek"`
	WorkingHoursPerDay             decimal.Decimal `json:"workingHoursPerDay"`
	BasicPercentage                decimal.Decimal `json:"basicPercentage"`
	HRAPercentage                  decimal.Decimal `json:"hraPercentage"`
	PerformanceBonusPercentage     decimal.Decimal `json:"performanceBonusPercentage"`
	LeaveTravelAllowancePercentage decimal.Decimal `json:"leaveTravelAllowancePercentage"`
	PFEmployeePercentage           decimal.Decimal `json:"pfEmployeePercentage"`
	PFEmployerPercentage           decimal.Decimal `json:"pfEmployerPercentage"`
	StandardAllowance              decimal.Decimal `json:"standardAllowance"`
	FoodAllowance                  decimal.Decimal `json:"foodAllowance"`
	ProfessionalTax                decimal.Decimal `json:"professionalTax"`
	CreatedAt                      time.Time       `json:"createdAt"`
	UpdatedAt                      time.Time       `json:"updatedAt"`
}

// SameInputs reports whether two templates carry identical compensation inputs,
// ignoring employee and timestamps.
func (t Template) SameInputs(other Template) bool {
	return t.MonthlyWage.Equal(other.MonthlyWage) &&
		t.WorkingDaysPerWeek.Equal(other.WorkingDaysPerWeek) &&
		t.WorkingHoursPerDay.Equal(other.WorkingHoursPerDay) &&
		t.BasicPercentage.Equal(other.BasicPercentage) &&
		t.HRAPercentage.Equal(other.HRAPercentage) &&
		t.PerformanceBonusPercentage.Equal(other.PerformanceBonusPercentage) &&
		t.LeaveTravelAllowancePercentage.Equal(other.LeaveTravelAllowancePercentage) &&
		t.PFEmployeePercentage.Equal(other.PFEmployeePercentage) &&
		t.PFEmployerPercentage.Equal(other.PFEmployerPercentage) &&
		t.StandardAllowance.Equal(other.StandardAllowance) &&
		t.FoodAllowance.Equal(other.FoodAllowance) &&
		t.ProfessionalTax.Equal(other.ProfessionalTax)
}

// Breakdown is the response-only projection derived from a Template.
// Line items and totals are each rounded from exact values, so the listed
// lines can differ from their total by a few cents.
type Breakdown struct {
	BasicSalary          decimal.Decimal `json:"basicSalary"`
	HRA                  decimal.Decimal `json:"hra"`
	PerformanceBonus     decimal.Decimal `json:"performanceBonus"`
	LeaveTravelAllowance decimal.Decimal `json:"leaveTravelAllowance"`
	StandardAllowance    decimal.Decimal `json:"standardAllowance"`
	FoodAllowance        decimal.Decimal `json:"foodAllowance"`
	TotalEarnings        decimal.Decimal `json:"totalEarnings"`
	PFEmployee           decimal.Decimal `json:"pfEmployee"`
	PFEmployer           decimal.Decimal `json:"pfEmployer"`
	ProfessionalTax      decimal.Decimal `json:"professionalTax"`
	TotalDeductions      decimal.Decimal `json:"totalDeductions"`
	NetSalary            decimal.Decimal `json:"netSalary"`
	YearlyWage           decimal.Decimal `json:"yearlyWage"`
}

func (b Breakdown) Equal(other Breakdown) bool {
	return b.BasicSalary.Equal(other.BasicSalary) &&
		b.HRA.Equal(other.HRA) &&
		b.PerformanceBonus.Equal(other.PerformanceBonus) &&
		b.LeaveTravelAllowance.Equal(other.LeaveTravelAllowance) &&
		b.StandardAllowance.Equal(other.StandardAllowance) &&
		b.FoodAllowance.Equal(other.FoodAllowance) &&
		b.TotalEarnings.Equal(other.TotalEarnings) &&
		b.PFEmployee.Equal(other.PFEmployee) &&
		b.PFEmployer.Equal(other.PFEmployer) &&
		b.ProfessionalTax.Equal(other.ProfessionalTax) &&
		b.TotalDeductions.Equal(other.TotalDeductions) &&
		b.NetSalary.Equal(other.NetSalary) &&
		b.YearlyWage.Equal(other.YearlyWage)
}

// Compensation pairs a stored template with the breakdown derived from it.
type Compensation struct {
	Template     Template  `json:"template"`
	Breakdown    Breakdown `json:"breakdown"`
	EmployeeName string    `json:"employeeName"`
}

// SetResult is returned by Service.Set. Created is true when no template
// existed for the employee before the write.
type SetResult struct {
	Compensation
	Created bool
}

type Page struct {
	Items []Compensation `json:"items"`
	Total int            `json:"total"`
}

// Employee is the slice of the directory record this package needs.
type Employee struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Email     string
}

func (e Employee) DisplayName() string {
	name := e.FirstName
	if e.LastName != "" {
		if name != "" {
			name += " "
		}
		name += e.LastName
	}
	if name == "" {
		return e.Email
	}
	return name
}
