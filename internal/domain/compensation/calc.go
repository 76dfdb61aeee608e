package compensation

import "github.com/shopspring/decimal"

// Derive computes the breakdown for a template. It is pure and total over
// templates that pass ValidateTemplate; callers validate first.
//
// Every basic-dependent component is a percentage of basicSalary, never of
// the monthly wage. Arithmetic runs at full precision and is rounded once at
// the end; net pay is taken from the rounded totals so that
// netSalary + totalDeductions == totalEarnings holds to the cent.
func Derive(t Template) Breakdown {
	exact := deriveExact(t)
	return exact.round()
}

type exactBreakdown struct {
	basic, hra, bonus, lta      decimal.Decimal
	standard, food              decimal.Decimal
	earnings                    decimal.Decimal
	pfEmployee, pfEmployer, tax decimal.Decimal
	deductions                  decimal.Decimal
	yearly                      decimal.Decimal
}

func deriveExact(t Template) exactBreakdown {
	var b exactBreakdown
	b.basic = percentOf(t.MonthlyWage, t.BasicPercentage)

	b.hra = percentOf(b.basic, t.HRAPercentage)
	b.bonus = percentOf(b.basic, t.PerformanceBonusPercentage)
	b.lta = percentOf(b.basic, t.LeaveTravelAllowancePercentage)
	b.pfEmployee = percentOf(b.basic, t.PFEmployeePercentage)
	b.pfEmployer = percentOf(b.basic, t.PFEmployerPercentage)

	b.standard = t.StandardAllowance
	b.food = t.FoodAllowance
	b.tax = t.ProfessionalTax

	b.earnings = b.basic.Add(b.hra).Add(b.standard).Add(b.bonus).Add(b.lta).Add(b.food)
	b.deductions = b.pfEmployee.Add(b.tax)

	b.yearly = t.MonthlyWage.Mul(monthsYear)
	return b
}

func (b exactBreakdown) round() Breakdown {
	earnings := roundMoney(b.earnings)
	deductions := roundMoney(b.deductions)
	return Breakdown{
		BasicSalary:          roundMoney(b.basic),
		HRA:                  roundMoney(b.hra),
		PerformanceBonus:     roundMoney(b.bonus),
		LeaveTravelAllowance: roundMoney(b.lta),
		StandardAllowance:    roundMoney(b.standard),
		FoodAllowance:        roundMoney(b.food),
		TotalEarnings:        earnings,
		PFEmployee:           roundMoney(b.pfEmployee),
		PFEmployer:           roundMoney(b.pfEmployer),
		ProfessionalTax:      roundMoney(b.tax),
		TotalDeductions:      deductions,
		NetSalary:            earnings.Sub(deductions),
		YearlyWage:           roundMoney(b.yearly),
	}
}

// percentOf returns amount × pct / 100 without any loss of precision.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Shift(-2)
}

// roundMoney rounds half away from zero to two places.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyPlaces)
}
