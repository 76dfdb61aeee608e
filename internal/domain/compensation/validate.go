package compensation

import "github.com/shopspring/decimal"

// ValidateTemplate checks every input field and reports all violations at once.
// Out-of-range values are rejected, never clamped.
func ValidateTemplate(t Template) error {
	return newValidationError(templateIssues(t))
}

func templateIssues(t Template) []FieldIssue {
	var issues []FieldIssue
	add := func(field, reason string) {
		issues = append(issues, FieldIssue{Field: field, Reason: reason})
	}

	nonNegative := []struct {
		field string
		value decimal.Decimal
	}{
		{FieldMonthlyWage, t.MonthlyWage},
		{FieldStandardAllowance, t.StandardAllowance},
		{FieldFoodAllowance, t.FoodAllowance},
		{FieldProfessionalTax, t.ProfessionalTax},
	}
	for _, f := range nonNegative {
		switch {
		case f.value.IsNegative():
			add(f.field, "must be zero or greater")
		case f.value.GreaterThanOrEqual(maxAmount):
			add(f.field, "must be less than "+maxAmount.String())
		}
		if !hasScale(f.value, MoneyPlaces) {
			add(f.field, "must have at most 2 decimal places")
		}
	}

	percentages := []struct {
		field string
		value decimal.Decimal
	}{
		{FieldBasicPercentage, t.BasicPercentage},
		{FieldHRAPercentage, t.HRAPercentage},
		{FieldPerformanceBonusPercentage, t.PerformanceBonusPercentage},
		{FieldLeaveTravelAllowancePercentage, t.LeaveTravelAllowancePercentage},
		{FieldPFEmployeePercentage, t.PFEmployeePercentage},
		{FieldPFEmployerPercentage, t.PFEmployerPercentage},
	}
	for _, f := range percentages {
		if f.value.IsNegative() || f.value.GreaterThan(percentMax) {
			add(f.field, "must be between 0 and 100")
		}
		if !hasScale(f.value, PercentPlaces) {
			add(f.field, "must have at most 2 decimal places")
		}
	}

	if !t.WorkingDaysPerWeek.IsPositive() || t.WorkingDaysPerWeek.GreaterThan(decimal.NewFromInt(MaxDaysPerWeek)) {
		add(FieldWorkingDaysPerWeek, "must be greater than 0 and at most 7")
	}
	if !t.WorkingHoursPerDay.IsPositive() || t.WorkingHoursPerDay.GreaterThan(decimal.NewFromInt(MaxHoursPerDay)) {
		add(FieldWorkingHoursPerDay, "must be greater than 0 and at most 24")
	}

	if !hasScale(t.WorkingDaysPerWeek, PercentPlaces) {
		add(FieldWorkingDaysPerWeek, "must have at most 2 decimal places")
	}
	if !hasScale(t.WorkingHoursPerDay, PercentPlaces) {
		add(FieldWorkingHoursPerDay, "must have at most 2 decimal places")
	}

	return issues
}

// hasScale reports whether v is exactly representable with places decimals,
// which keeps a stored template identical to the submitted one.
func hasScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// MissingFields turns a list of absent field names into a validation error
// merged with the range issues of t. Partial templates are never accepted.
func MissingFields(t Template, missing []string) error {
	issues := make([]FieldIssue, 0, len(missing))
	absent := map[string]struct{}{}
	for _, field := range missing {
		absent[field] = struct{}{}
		issues = append(issues, FieldIssue{Field: field, Reason: "is required"})
	}
	for _, issue := range templateIssues(t) {
		if _, skip := absent[issue.Field]; skip {
			continue
		}
		issues = append(issues, issue)
	}
	return newValidationError(issues)
}
