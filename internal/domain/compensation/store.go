package compensation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	cryptoutil "hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/db"
)

const (
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

const templateColumns = `
    t.employee_id::text,
    COALESCE(t.monthly_wage::text, ''),
    t.monthly_wage_enc,
    t.working_days_per_week::text,
    t.working_hours_per_day::text,
    t.basic_percentage::text,
    t.hra_percentage::text,
    t.performance_bonus_percentage::text,
    t.leave_travel_allowance_percentage::text,
    t.pf_employee_percentage::text,
    t.pf_employer_percentage::text,
    t.standard_allowance::text,
    t.food_allowance::text,
    t.professional_tax::text,
    t.created_at,
    t.updated_at`

type Store struct {
	DB     db.Queryer
	Crypto *cryptoutil.Service
}

func NewStore(q db.Queryer, crypto *cryptoutil.Service) *Store {
	return &Store{DB: q, Crypto: crypto}
}

func (s *Store) GetTemplate(ctx context.Context, tenantID, employeeID string) (Template, error) {
	exec := db.QueryerFromContext(ctx, s.DB)
	row := exec.QueryRow(ctx, `
    SELECT`+templateColumns+`
    FROM compensation_templates t
    WHERE t.tenant_id = $1 AND t.employee_id = $2
  `, tenantID, employeeID)
	tpl, err := s.scanTemplate(row)
	if err != nil {
		return Template{}, translateStoreError(err)
	}
	return tpl, nil
}

// LockTemplate serializes writers of one employee with a transaction-scoped
// advisory lock, so first-time writers queue up even though no row exists
// for FOR UPDATE to hold yet.
func (s *Store) LockTemplate(ctx context.Context, tenantID, employeeID string) (Template, bool, error) {
	exec := db.QueryerFromContext(ctx, s.DB)
	if _, err := exec.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))", tenantID, employeeID); err != nil {
		return Template{}, false, translateStoreError(err)
	}
	row := exec.QueryRow(ctx, `
    SELECT`+templateColumns+`
    FROM compensation_templates t
    WHERE t.tenant_id = $1 AND t.employee_id = $2
    FOR UPDATE
  `, tenantID, employeeID)
	tpl, err := s.scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, false, nil
	}
	if err != nil {
		return Template{}, false, translateStoreError(err)
	}
	return tpl, true, nil
}

// ReplaceTemplate upserts t. inserted reports whether the row was created by
// this statement rather than updated.
func (s *Store) ReplaceTemplate(ctx context.Context, tenantID string, t Template) (Template, bool, error) {
	wagePlain, wageEnc, err := s.sealWage(t.MonthlyWage)
	if err != nil {
		return Template{}, false, err
	}

	exec := db.QueryerFromContext(ctx, s.DB)
	row := exec.QueryRow(ctx, `
    INSERT INTO compensation_templates AS t (
      tenant_id, employee_id, monthly_wage, monthly_wage_enc,
      working_days_per_week, working_hours_per_day,
      basic_percentage, hra_percentage, performance_bonus_percentage, leave_travel_allowance_percentage,
      pf_employee_percentage, pf_employer_percentage,
      standard_allowance, food_allowance, professional_tax
    )
    VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10::numeric,
            $11::numeric, $12::numeric, $13::numeric, $14::numeric, $15::numeric)
    ON CONFLICT (tenant_id, employee_id) DO UPDATE SET
      monthly_wage = EXCLUDED.monthly_wage,
      monthly_wage_enc = EXCLUDED.monthly_wage_enc,
      working_days_per_week = EXCLUDED.working_days_per_week,
      working_hours_per_day = EXCLUDED.working_hours_per_day,
      basic_percentage = EXCLUDED.basic_percentage,
      hra_percentage = EXCLUDED.hra_percentage,
      performance_bonus_percentage = EXCLUDED.performance_bonus_percentage,
      leave_travel_allowance_percentage = EXCLUDED.leave_travel_allowance_percentage,
      pf_employee_percentage = EXCLUDED.pf_employee_percentage,
      pf_employer_percentage = EXCLUDED.pf_employer_percentage,
      standard_allowance = EXCLUDED.standard_allowance,
      food_allowance = EXCLUDED.food_allowance,
      professional_tax = EXCLUDED.professional_tax,
      updated_at = now()
    RETURNING`+templateColumns+`, (xmax = 0)`,
		tenantID,
		t.EmployeeID,
		wagePlain,
		wageEnc,
		t.WorkingDaysPerWeek.String(),
		t.WorkingHoursPerDay.String(),
		t.BasicPercentage.String(),
		t.HRAPercentage.String(),
		t.PerformanceBonusPercentage.String(),
		t.LeaveTravelAllowancePercentage.String(),
		t.PFEmployeePercentage.String(),
		t.PFEmployerPercentage.String(),
		t.StandardAllowance.String(),
		t.FoodAllowance.String(),
		t.ProfessionalTax.String(),
	)
	var inserted bool
	stored, err := s.scanTemplateWith(row, &inserted)
	if err != nil {
		return Template{}, false, translateStoreError(err)
	}
	return stored, inserted, nil
}

func (s *Store) CountTemplates(ctx context.Context, tenantID string) (int, error) {
	exec := db.QueryerFromContext(ctx, s.DB)
	var total int
	if err := exec.QueryRow(ctx, "SELECT COUNT(1) FROM compensation_templates WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return 0, translateStoreError(err)
	}
	return total, nil
}

func (s *Store) ListTemplates(ctx context.Context, tenantID string, limit, offset int) ([]ListedTemplate, error) {
	exec := db.QueryerFromContext(ctx, s.DB)
	rows, err := exec.Query(ctx, `
    SELECT`+templateColumns+`,
           e.id::text, COALESCE(e.user_id::text, ''), e.first_name, e.last_name, e.email
    FROM compensation_templates t
    JOIN employees e ON e.id = t.employee_id
    WHERE t.tenant_id = $1
    ORDER BY e.last_name, e.first_name, t.employee_id
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, translateStoreError(err)
	}
	defer rows.Close()

	var out []ListedTemplate
	for rows.Next() {
		var item ListedTemplate
		var emp Employee
		tpl, err := s.scanTemplateWith(rows, &emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email)
		if err != nil {
			return nil, translateStoreError(err)
		}
		item.Template = tpl
		item.Employee = emp
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateStoreError(err)
	}
	return out, nil
}

func (s *Store) scanTemplate(row pgx.Row) (Template, error) {
	return s.scanTemplateWith(row)
}

func (s *Store) scanTemplateWith(row pgx.Row, extra ...any) (Template, error) {
	var (
		tpl                                Template
		wage                               string
		wageEnc                            []byte
		days, hours                        string
		basic, hra, bonus, lta, pfEe, pfEr string
		standard, food, professionalTax    string
		createdAt, updatedAt               time.Time
	)
	dest := []any{
		&tpl.EmployeeID, &wage, &wageEnc, &days, &hours,
		&basic, &hra, &bonus, &lta, &pfEe, &pfEr,
		&standard, &food, &professionalTax,
		&createdAt, &updatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return Template{}, err
	}

	wageValue, err := s.openWage(wage, wageEnc)
	if err != nil {
		return Template{}, err
	}
	tpl.MonthlyWage = wageValue

	fields := []struct {
		raw    string
		target *decimal.Decimal
	}{
		{days, &tpl.WorkingDaysPerWeek},
		{hours, &tpl.WorkingHoursPerDay},
		{basic, &tpl.BasicPercentage},
		{hra, &tpl.HRAPercentage},
		{bonus, &tpl.PerformanceBonusPercentage},
		{lta, &tpl.LeaveTravelAllowancePercentage},
		{pfEe, &tpl.PFEmployeePercentage},
		{pfEr, &tpl.PFEmployerPercentage},
		{standard, &tpl.StandardAllowance},
		{food, &tpl.FoodAllowance},
		{professionalTax, &tpl.ProfessionalTax},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Template{}, fmt.Errorf("%w: parse stored value %q: %v", ErrCorruptRecord, f.raw, err)
		}
		*f.target = value
	}
	tpl.CreatedAt = createdAt
	tpl.UpdatedAt = updatedAt
	return tpl, nil
}

// sealWage returns the column values for the wage: plaintext when no key is
// configured, ciphertext only otherwise.
func (s *Store) sealWage(wage decimal.Decimal) (any, []byte, error) {
	if !s.Crypto.Configured() {
		return wage.String(), nil, nil
	}
	enc, err := s.Crypto.SealString(wage.String())
	if err != nil {
		return nil, nil, fmt.Errorf("compensation: encrypt wage: %w", err)
	}
	return nil, enc, nil
}

func (s *Store) openWage(plain string, enc []byte) (decimal.Decimal, error) {
	if len(enc) > 0 {
		decrypted, err := s.Crypto.OpenString(enc)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: decrypt wage: %v", ErrCorruptRecord, err)
		}
		plain = decrypted
	}
	value, err := decimal.NewFromString(plain)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parse stored wage: %v", ErrCorruptRecord, err)
	}
	return value, nil
}

func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, ErrCorruptRecord) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return ErrEmployeeNotFound
		case checkViolationCode:
			return newValidationError([]FieldIssue{{Field: pgErr.ConstraintName, Reason: "violates a storage constraint"}})
		}
	}
	return fmt.Errorf("%w: %w", ErrTransientStorage, err)
}
