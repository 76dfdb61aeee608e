package compensation

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func sampleTemplate() Template {
	return Template{
		EmployeeID:                     "5f0c4b8e-8a0e-4c7e-9d36-0a4f7f6f8d11",
		MonthlyWage:                    d("50000"),
		WorkingDaysPerWeek:             d("5"),
		WorkingHoursPerDay:             d("8"),
		BasicPercentage:                d("50"),
		HRAPercentage:                  d("40"),
		PerformanceBonusPercentage:     d("8.33"),
		LeaveTravelAllowancePercentage: d("8.33"),
		PFEmployeePercentage:           d("12"),
		PFEmployerPercentage:           d("12"),
		StandardAllowance:              d("2000"),
		FoodAllowance:                  d("1500"),
		ProfessionalTax:                d("200"),
	}
}

func TestDeriveScenario(t *testing.T) {
	b := Derive(sampleTemplate())

	expect := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"basicSalary":          {b.BasicSalary, "25000.00"},
		"hra":                  {b.HRA, "10000.00"},
		"performanceBonus":     {b.PerformanceBonus, "2082.50"},
		"leaveTravelAllowance": {b.LeaveTravelAllowance, "2082.50"},
		"totalEarnings":        {b.TotalEarnings, "42665.00"},
		"pfEmployee":           {b.PFEmployee, "3000.00"},
		"pfEmployer":           {b.PFEmployer, "3000.00"},
		"totalDeductions":      {b.TotalDeductions, "3200.00"},
		"netSalary":            {b.NetSalary, "39465.00"},
		"yearlyWage":           {b.YearlyWage, "600000.00"},
	}
	for name, tc := range expect {
		if got := tc.got.StringFixed(MoneyPlaces); got != tc.want {
			t.Errorf("%s: expected %s, got %s", name, tc.want, got)
		}
	}
}

func TestDerivePercentagesAreOfBasic(t *testing.T) {
	tpl := sampleTemplate()
	tpl.BasicPercentage = d("10")
	b := Derive(tpl)

	// Basic is 5000; 40% of basic is 2000, not 40% of the wage.
	if !b.HRA.Equal(d("2000")) {
		t.Fatalf("expected hra 2000, got %s", b.HRA)
	}
	if !b.PFEmployee.Equal(d("600")) {
		t.Fatalf("expected pf 600, got %s", b.PFEmployee)
	}
}

func TestDeriveZeroWage(t *testing.T) {
	tpl := sampleTemplate()
	tpl.MonthlyWage = decimal.Zero
	b := Derive(tpl)

	for name, v := range map[string]decimal.Decimal{
		"basicSalary":          b.BasicSalary,
		"hra":                  b.HRA,
		"performanceBonus":     b.PerformanceBonus,
		"leaveTravelAllowance": b.LeaveTravelAllowance,
		"pfEmployee":           b.PFEmployee,
		"pfEmployer":           b.PFEmployer,
		"yearlyWage":           b.YearlyWage,
	} {
		if !v.IsZero() {
			t.Errorf("%s: expected 0, got %s", name, v)
		}
	}
	if !b.TotalEarnings.Equal(d("3500")) {
		t.Fatalf("expected earnings to equal fixed allowances, got %s", b.TotalEarnings)
	}
	if !b.NetSalary.Equal(b.TotalEarnings.Sub(tpl.ProfessionalTax)) {
		t.Fatalf("expected net = earnings - tax, got %s", b.NetSalary)
	}
}

func TestDeriveRoundsOnceAtTheEnd(t *testing.T) {
	tpl := sampleTemplate()
	tpl.MonthlyWage = d("12345.67")
	tpl.BasicPercentage = d("1.11")
	tpl.HRAPercentage = d("40")
	b := Derive(tpl)

	// basic = 137.036937. HRA from the exact basic is 54.8147748; taking it
	// from the rounded basic (137.04) would give 54.82.
	if !b.BasicSalary.Equal(d("137.04")) {
		t.Fatalf("unexpected basic %s", b.BasicSalary)
	}
	if !b.HRA.Equal(d("54.81")) {
		t.Fatalf("unexpected hra %s", b.HRA)
	}
}

func TestDeriveNetBalancesToTheCent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cents := func(max int64) decimal.Decimal {
		return decimal.New(rng.Int63n(max), -2)
	}

	for i := 0; i < 2000; i++ {
		tpl := Template{
			MonthlyWage:                    cents(100_000_000),
			WorkingDaysPerWeek:             d("5"),
			WorkingHoursPerDay:             d("8"),
			BasicPercentage:                cents(10001),
			HRAPercentage:                  cents(10001),
			PerformanceBonusPercentage:     cents(10001),
			LeaveTravelAllowancePercentage: cents(10001),
			PFEmployeePercentage:           cents(10001),
			PFEmployerPercentage:           cents(10001),
			StandardAllowance:              cents(1_000_000),
			FoodAllowance:                  cents(1_000_000),
			ProfessionalTax:                cents(100_000),
		}
		if err := ValidateTemplate(tpl); err != nil {
			t.Fatalf("generated invalid template: %v", err)
		}
		b := Derive(tpl)
		if !b.NetSalary.Add(b.TotalDeductions).Equal(b.TotalEarnings) {
			t.Fatalf("net %s + deductions %s != earnings %s for %+v", b.NetSalary, b.TotalDeductions, b.TotalEarnings, tpl)
		}
		for _, v := range []decimal.Decimal{b.BasicSalary, b.HRA, b.TotalEarnings, b.NetSalary, b.YearlyWage} {
			if !v.Equal(v.Round(MoneyPlaces)) {
				t.Fatalf("value %s carries more than two places", v)
			}
		}
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	a := sampleTemplate()
	other := sampleTemplate()
	other.MonthlyWage = d("12345.67")

	first := Derive(a)
	for i := 0; i < 10; i++ {
		Derive(other)
		if got := Derive(a); !got.Equal(first) {
			t.Fatalf("run %d: breakdown changed: %+v vs %+v", i, got, first)
		}
	}
}
