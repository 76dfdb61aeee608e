package compensation

import "github.com/shopspring/decimal"

const (
	// MoneyPlaces is the precision of every presented amount.
	MoneyPlaces   int32 = 2
	// PercentPlaces is the stored precision of percentages, days and hours.
	PercentPlaces int32 = 2

	MonthsPerYear = 12

	ActionSet        = "compensation.set"
	ActionPreview    = "compensation.preview"
	EntityType       = "compensation_template"
	MaxDaysPerWeek   = 7
	MaxHoursPerDay   = 24
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

const (
	FieldMonthlyWage                    = "monthlyWage"
	FieldWorkingDaysPerWeek             = "workingDaysPerWeek"
	FieldWorkingHoursPerDay             = "workingHoursPerDay"
	FieldBasicPercentage                = "basicPercentage"
	FieldHRAPercentage                  = "hraPercentage"
	FieldPerformanceBonusPercentage     = "performanceBonusPercentage"
	FieldLeaveTravelAllowancePercentage = "leaveTravelAllowancePercentage"
	FieldPFEmployeePercentage           = "pfEmployeePercentage"
	FieldPFEmployerPercentage           = "pfEmployerPercentage"
	FieldStandardAllowance              = "standardAllowance"
	FieldFoodAllowance                  = "foodAllowance"
	FieldProfessionalTax                = "professionalTax"
)

// TemplateFields lists every input field in form order. A submitted template
// must carry all of them.
var TemplateFields = []string{
	FieldMonthlyWage,
	FieldWorkingDaysPerWeek,
	FieldWorkingHoursPerDay,
	FieldBasicPercentage,
	FieldHRAPercentage,
	FieldStandardAllowance,
	FieldPerformanceBonusPercentage,
	FieldLeaveTravelAllowancePercentage,
	FieldFoodAllowance,
	FieldPFEmployeePercentage,
	FieldPFEmployerPercentage,
	FieldProfessionalTax,
}

var (
	percentMax = decimal.NewFromInt(100)
	maxAmount  = decimal.New(1, 12)
	monthsYear = decimal.NewFromInt(MonthsPerYear)
)

// DefaultTemplate returns the values a new compensation form starts from.
func DefaultTemplate() Template {
	return Template{
		MonthlyWage:                    decimal.Zero,
		WorkingDaysPerWeek:             decimal.NewFromInt(5),
		WorkingHoursPerDay:             decimal.NewFromInt(8),
		BasicPercentage:                decimal.NewFromInt(50),
		HRAPercentage:                  decimal.NewFromInt(40),
		PerformanceBonusPercentage:     decimal.RequireFromString("8.33"),
		LeaveTravelAllowancePercentage: decimal.RequireFromString("8.33"),
		PFEmployeePercentage:           decimal.NewFromInt(12),
		PFEmployerPercentage:           decimal.NewFromInt(12),
		StandardAllowance:              decimal.Zero,
		FoodAllowance:                  decimal.Zero,
		ProfessionalTax:                decimal.NewFromInt(200),
	}
}
