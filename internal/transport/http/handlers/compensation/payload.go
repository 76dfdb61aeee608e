package compensationhandler

import (
	"time"

	"github.com/shopspring/decimal"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/compensation"
)

// templatePayload accepts each value as a JSON number or a decimal string.
// Pointers tell an absent field apart from an explicit zero.
type templatePayload struct {
	MonthlyWage                    *decimal.Decimal `json:"monthlyWage"`
	WorkingDaysPerWeek             *decimal.Decimal `json:"workingDaysPerWeek"`
	WorkingHoursPerDay             *decimal.Decimal `json:"workingHoursPerDay"`
	BasicPercentage                *decimal.Decimal `json:"basicPercentage"`
	HRAPercentage                  *decimal.Decimal `json:"hraPercentage"`
	PerformanceBonusPercentage     *decimal.Decimal `json:"performanceBonusPercentage"`
	LeaveTravelAllowancePercentage *decimal.Decimal `json:"leaveTravelAllowancePercentage"`
	PFEmployeePercentage           *decimal.Decimal `json:"pfEmployeePercentage"`
	PFEmployerPercentage           *decimal.Decimal `json:"pfEmployerPercentage"`
	StandardAllowance              *decimal.Decimal `json:"standardAllowance"`
	FoodAllowance                  *decimal.Decimal `json:"foodAllowance"`
	ProfessionalTax                *decimal.Decimal `json:"professionalTax"`
}

// template converts the payload; every field is required because writes
// replace the whole template.
func (p templatePayload) template() (compensation.Template, error) {
	var t compensation.Template
	var missing []string
	fields := []struct {
		name   string
		value  *decimal.Decimal
		target *decimal.Decimal
	}{
		{compensation.FieldMonthlyWage, p.MonthlyWage, &t.MonthlyWage},
		{compensation.FieldWorkingDaysPerWeek, p.WorkingDaysPerWeek, &t.WorkingDaysPerWeek},
		{compensation.FieldWorkingHoursPerDay, p.WorkingHoursPerDay, &t.WorkingHoursPerDay},
		{compensation.FieldBasicPercentage, p.BasicPercentage, &t.BasicPercentage},
		{compensation.FieldHRAPercentage, p.HRAPercentage, &t.HRAPercentage},
		{compensation.FieldPerformanceBonusPercentage, p.PerformanceBonusPercentage, &t.PerformanceBonusPercentage},
		{compensation.FieldLeaveTravelAllowancePercentage, p.LeaveTravelAllowancePercentage, &t.LeaveTravelAllowancePercentage},
		{compensation.FieldPFEmployeePercentage, p.PFEmployeePercentage, &t.PFEmployeePercentage},
		{compensation.FieldPFEmployerPercentage, p.PFEmployerPercentage, &t.PFEmployerPercentage},
		{compensation.FieldStandardAllowance, p.StandardAllowance, &t.StandardAllowance},
		{compensation.FieldFoodAllowance, p.FoodAllowance, &t.FoodAllowance},
		{compensation.FieldProfessionalTax, p.ProfessionalTax, &t.ProfessionalTax},
	}
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
			continue
		}
		*f.target = *f.value
	}
	if len(missing) > 0 {
		return compensation.Template{}, compensation.MissingFields(t, missing)
	}
	return t, nil
}

type templateResponse struct {
	MonthlyWage                    string     `json:"monthlyWage"`
	WorkingDaysPerWeek             string     `json:"workingDaysPerWeek"`
	WorkingHoursPerDay             string     `json:"workingHoursPerDay"`
	BasicPercentage                string     `json:"basicPercentage"`
	HRAPercentage                  string     `json:"hraPercentage"`
	PerformanceBonusPercentage     string     `json:"performanceBonusPercentage"`
	LeaveTravelAllowancePercentage string     `json:"leaveTravelAllowancePercentage"`
	PFEmployeePercentage           string     `json:"pfEmployeePercentage"`
	PFEmployerPercentage           string     `json:"pfEmployerPercentage"`
	StandardAllowance              string     `json:"standardAllowance"`
	FoodAllowance                  string     `json:"foodAllowance"`
	ProfessionalTax                string     `json:"professionalTax"`
	CreatedAt                      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt                      *time.Time `json:"updatedAt,omitempty"`
}

type breakdownResponse struct {
	BasicSalary          string `json:"basicSalary"`
	HRA                  string `json:"hra"`
	PerformanceBonus     string `json:"performanceBonus"`
	LeaveTravelAllowance string `json:"leaveTravelAllowance"`
	StandardAllowance    string `json:"standardAllowance"`
	FoodAllowance        string `json:"foodAllowance"`
	TotalEarnings        string `json:"totalEarnings"`
	PFEmployee           string `json:"pfEmployee"`
	PFEmployer           string `json:"pfEmployer"`
	ProfessionalTax      string `json:"professionalTax"`
	TotalDeductions      string `json:"totalDeductions"`
	NetSalary            string `json:"netSalary"`
	YearlyWage           string `json:"yearlyWage"`
}

type compensationResponse struct {
	EmployeeID   string            `json:"employeeId"`
	EmployeeName string            `json:"employeeName"`
	Template     templateResponse  `json:"template"`
	Breakdown    breakdownResponse `json:"breakdown"`
}

type historyEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Before    any       `json:"before"`
	After     any       `json:"after"`
}

func fixed(v decimal.Decimal) string {
	return v.StringFixed(compensation.MoneyPlaces)
}

func toTemplateResponse(t compensation.Template) templateResponse {
	out := templateResponse{
		MonthlyWage:                    fixed(t.MonthlyWage),
		WorkingDaysPerWeek:             t.WorkingDaysPerWeek.StringFixed(compensation.PercentPlaces),
		WorkingHoursPerDay:             t.WorkingHoursPerDay.StringFixed(compensation.PercentPlaces),
		BasicPercentage:                t.BasicPercentage.StringFixed(compensation.PercentPlaces),
		HRAPercentage:                  t.HRAPercentage.StringFixed(compensation.PercentPlaces),
		PerformanceBonusPercentage:     t.PerformanceBonusPercentage.StringFixed(compensation.PercentPlaces),
		LeaveTravelAllowancePercentage: t.LeaveTravelAllowancePercentage.StringFixed(compensation.PercentPlaces),
		PFEmployeePercentage:           t.PFEmployeePercentage.StringFixed(compensation.PercentPlaces),
		PFEmployerPercentage:           t.PFEmployerPercentage.StringFixed(compensation.PercentPlaces),
		StandardAllowance:              fixed(t.StandardAllowance),
		FoodAllowance:                  fixed(t.FoodAllowance),
		ProfessionalTax:                fixed(t.ProfessionalTax),
	}
	if !t.CreatedAt.IsZero() {
		created, updated := t.CreatedAt, t.UpdatedAt
		out.CreatedAt = &created
		out.UpdatedAt = &updated
	}
	return out
}

func toBreakdownResponse(b compensation.Breakdown) breakdownResponse {
	return breakdownResponse{
		BasicSalary:          fixed(b.BasicSalary),
		HRA:                  fixed(b.HRA),
		PerformanceBonus:     fixed(b.PerformanceBonus),
		LeaveTravelAllowance: fixed(b.LeaveTravelAllowance),
		StandardAllowance:    fixed(b.StandardAllowance),
		FoodAllowance:        fixed(b.FoodAllowance),
		TotalEarnings:        fixed(b.TotalEarnings),
		PFEmployee:           fixed(b.PFEmployee),
		PFEmployer:           fixed(b.PFEmployer),
		ProfessionalTax:      fixed(b.ProfessionalTax),
		TotalDeductions:      fixed(b.TotalDeductions),
		NetSalary:            fixed(b.NetSalary),
		YearlyWage:           fixed(b.YearlyWage),
	}
}

func toCompensationResponse(c compensation.Compensation) compensationResponse {
	return compensationResponse{
		EmployeeID:   c.Template.EmployeeID,
		EmployeeName: c.EmployeeName,
		Template:     toTemplateResponse(c.Template),
		Breakdown:    toBreakdownResponse(c.Breakdown),
	}
}

func toHistoryEntries(events []audit.Event) []historyEntry {
	out := make([]historyEntry, 0, len(events))
	for _, evt := range events {
		entry := historyEntry{ID: evt.ID, ActorID: evt.ActorID, RequestID: evt.RequestID, CreatedAt: evt.CreatedAt}
		if len(evt.Before) > 0 {
			entry.Before = evt.Before
		}
		if len(evt.After) > 0 {
			entry.After = evt.After
		}
		out = append(out, entry)
	}
	return out
}
