package compensation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateTemplateAcceptsDefaults(t *testing.T) {
	if err := ValidateTemplate(DefaultTemplate()); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if err := ValidateTemplate(sampleTemplate()); err != nil {
		t.Fatalf("sample should be valid: %v", err)
	}
}

func TestValidateTemplateBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Template)
		field  string
	}{
		{"percentage above 100", func(t *Template) { t.HRAPercentage = d("100.01") }, FieldHRAPercentage},
		{"negative percentage", func(t *Template) { t.PFEmployerPercentage = d("-1") }, FieldPFEmployerPercentage},
		{"negative wage", func(t *Template) { t.MonthlyWage = d("-0.01") }, FieldMonthlyWage},
		{"negative allowance", func(t *Template) { t.FoodAllowance = d("-5") }, FieldFoodAllowance},
		{"negative tax", func(t *Template) { t.ProfessionalTax = d("-200") }, FieldProfessionalTax},
		{"wage too precise", func(t *Template) { t.MonthlyWage = d("100.005") }, FieldMonthlyWage},
		{"percentage too precise", func(t *Template) { t.BasicPercentage = d("33.333") }, FieldBasicPercentage},
		{"wage too large", func(t *Template) { t.MonthlyWage = d("1000000000000") }, FieldMonthlyWage},
		{"zero days", func(t *Template) { t.WorkingDaysPerWeek = decimal.Zero }, FieldWorkingDaysPerWeek},
		{"eight days", func(t *Template) { t.WorkingDaysPerWeek = d("8") }, FieldWorkingDaysPerWeek},
		{"25 hours", func(t *Template) { t.WorkingHoursPerDay = d("25") }, FieldWorkingHoursPerDay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := sampleTemplate()
			tc.mutate(&tpl)
			err := ValidateTemplate(tpl)
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !verr.Has(tc.field) {
				t.Fatalf("expected %s in %v", tc.field, verr.Fields())
			}
		})
	}
}

func TestValidateTemplateAcceptsInclusiveLimits(t *testing.T) {
	tpl := sampleTemplate()
	tpl.BasicPercentage = d("100")
	tpl.HRAPercentage = decimal.Zero
	tpl.MonthlyWage = decimal.Zero
	tpl.WorkingDaysPerWeek = d("7")
	tpl.WorkingHoursPerDay = d("24")
	if err := ValidateTemplate(tpl); err != nil {
		t.Fatalf("expected inclusive limits to pass, got %v", err)
	}
}

func TestValidateTemplateReportsEveryField(t *testing.T) {
	tpl := sampleTemplate()
	tpl.BasicPercentage = d("150")
	tpl.HRAPercentage = d("-1")
	tpl.StandardAllowance = d("-10")

	verr, ok := AsValidationError(ValidateTemplate(tpl))
	if !ok {
		t.Fatal("expected validation error")
	}
	want := []string{FieldBasicPercentage, FieldHRAPercentage, FieldStandardAllowance}
	got := verr.Fields()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMissingFields(t *testing.T) {
	tpl := sampleTemplate()
	tpl.HRAPercentage = decimal.Zero
	tpl.FoodAllowance = d("-1")

	err := MissingFields(tpl, []string{FieldHRAPercentage, FieldMonthlyWage})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verr.Has(FieldHRAPercentage) || !verr.Has(FieldMonthlyWage) || !verr.Has(FieldFoodAllowance) {
		t.Fatalf("unexpected fields %v", verr.Fields())
	}
	for _, issue := range verr.Issues {
		if issue.Field == FieldHRAPercentage && issue.Reason != "is required" {
			t.Fatalf("expected required reason, got %q", issue.Reason)
		}
	}
	if err := MissingFields(sampleTemplate(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateTemplate(Template{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Error() == "" || !verr.Has(FieldWorkingDaysPerWeek) {
		t.Fatalf("unexpected error %v", verr)
	}
}

func TestPreviewMatchesDerive(t *testing.T) {
	tpl := sampleTemplate()
	got, err := Preview(tpl)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !got.Equal(Derive(tpl)) {
		t.Fatal("preview differs from derive")
	}

	tpl.BasicPercentage = d("101")
	if _, err := Preview(tpl); err == nil {
		t.Fatal("expected preview to reject invalid input")
	}
}
