package compensation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/requestctx"
)

const defaultStorageTimeout = 5 * time.Second

type Service struct {
	store     StoreAPI
	directory Directory
	authz     Authorizer
	tx        Transactor
	audit     AuditLog
	counter   Counter
	logger    *slog.Logger
	timeout   time.Duration
}

type Option func(*Service)

func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func WithAudit(log AuditLog) Option {
	return func(s *Service) {
		s.audit = log
	}
}

func WithMetrics(counter Counter) Option {
	return func(s *Service) {
		s.counter = counter
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithStorageTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func NewService(store StoreAPI, directory Directory, authz Authorizer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		authz:     authz,
		tx:        noTx{},
		logger:    slog.Default(),
		timeout:   defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored template for an employee with its breakdown.
// HR and admins may read anyone; other principals only their own record.
func (s *Service) Get(ctx context.Context, principal auth.UserContext, employeeID string) (Compensation, error) {
	emp, err := s.authorizeRead(ctx, principal, employeeID)
	if err != nil {
		return Compensation{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tpl, err := s.store.GetTemplate(storeCtx, principal.TenantID, emp.ID)
	if err != nil {
		return Compensation{}, storageError("get template", err)
	}
	return Compensation{Template: tpl, Breakdown: Derive(tpl), EmployeeName: emp.DisplayName()}, nil
}

// Set validates and stores t as the employee's complete template, replacing
// any previous one, and returns the breakdown derived from what was stored.
func (s *Service) Set(ctx context.Context, principal auth.UserContext, employeeID string, t Template) (SetResult, error) {
	if err := s.require(ctx, principal, auth.PermCompensationWrite); err != nil {
		return SetResult{}, err
	}
	if err := ValidateTemplate(t); err != nil {
		return SetResult{}, err
	}
	emp, err := s.lookupEmployee(ctx, principal.TenantID, employeeID)
	if err != nil {
		return SetResult{}, err
	}
	t.EmployeeID = emp.ID

	var before Template
	var existed, inserted bool
	var stored Template
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err = s.tx.WithinReadWrite(storeCtx, func(txCtx context.Context) error {
		var lockErr error
		before, existed, lockErr = s.store.LockTemplate(txCtx, principal.TenantID, emp.ID)
		if lockErr != nil {
			return lockErr
		}
		var writeErr error
		stored, inserted, writeErr = s.store.ReplaceTemplate(txCtx, principal.TenantID, t)
		return writeErr
	})
	if err != nil {
		return SetResult{}, storageError("replace template", err)
	}

	s.recordAudit(ctx, principal, emp.ID, before, existed, stored)
	s.count(ActionSet)
	s.logger.InfoContext(ctx, "compensation template stored",
		"employeeId", emp.ID,
		"tenantId", principal.TenantID,
		"actorId", principal.UserID,
		"created", inserted,
	)

	return SetResult{
		Compensation: Compensation{Template: stored, Breakdown: Derive(stored), EmployeeName: emp.DisplayName()},
		Created:      inserted,
	}, nil
}

// Preview derives a breakdown for values that have not been submitted.
// Nothing is stored.
func (s *Service) Preview(ctx context.Context, principal auth.UserContext, t Template) (Breakdown, error) {
	if err := s.require(ctx, principal, auth.PermCompensationPreview); err != nil {
		return Breakdown{}, err
	}
	b, err := Preview(t)
	if err != nil {
		return Breakdown{}, err
	}
	s.count(ActionPreview)
	return b, nil
}

func (s *Service) List(ctx context.Context, principal auth.UserContext, limit, offset int) (Page, error) {
	if err := s.require(ctx, principal, auth.PermCompensationRead); err != nil {
		return Page{}, err
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.store.CountTemplates(storeCtx, principal.TenantID)
	if err != nil {
		return Page{}, storageError("count templates", err)
	}
	rows, err := s.store.ListTemplates(storeCtx, principal.TenantID, limit, offset)
	if err != nil {
		return Page{}, storageError("list templates", err)
	}

	items := make([]Compensation, 0, len(rows))
	for _, row := range rows {
		items = append(items, Compensation{
			Template:     row.Template,
			Breakdown:    Derive(row.Template),
			EmployeeName: row.Employee.DisplayName(),
		})
	}
	return Page{Items: items, Total: total}, nil
}

// History lists the recorded replacements of an employee's template, newest first.
func (s *Service) History(ctx context.Context, principal auth.UserContext, employeeID string, limit, offset int) ([]audit.Event, int, error) {
	if err := s.require(ctx, principal, auth.PermCompensationRead); err != nil {
		return nil, 0, err
	}
	if s.audit == nil {
		return []audit.Event{}, 0, nil
	}
	emp, err := s.lookupEmployee(ctx, principal.TenantID, employeeID)
	if err != nil {
		return nil, 0, err
	}

	filter := audit.Filter{Action: ActionSet, EntityType: EntityType, EntityID: emp.ID}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	total, err := s.audit.Count(storeCtx, principal.TenantID, filter)
	if err != nil {
		return nil, 0, storageError("count history", err)
	}
	events, err := s.audit.List(storeCtx, principal.TenantID, filter, true, limit, offset)
	if err != nil {
		return nil, 0, storageError("list history", err)
	}
	return events, total, nil
}

// Statement renders the employee's current breakdown as a PDF into w.
func (s *Service) Statement(ctx context.Context, principal auth.UserContext, employeeID string, w io.Writer) error {
	comp, err := s.Get(ctx, principal, employeeID)
	if err != nil {
		return err
	}
	return RenderStatement(w, comp, time.Now().UTC())
}

func (s *Service) authorizeRead(ctx context.Context, principal auth.UserContext, employeeID string) (Employee, error) {
	readAll, err := s.can(ctx, principal, auth.PermCompensationRead)
	if err != nil {
		return Employee{}, err
	}
	if readAll {
		return s.lookupEmployee(ctx, principal.TenantID, employeeID)
	}

	readSelf, err := s.can(ctx, principal, auth.PermCompensationReadSelf)
	if err != nil {
		return Employee{}, err
	}
	if !readSelf || principal.UserID == "" {
		return Employee{}, ErrForbidden
	}
	emp, err := s.lookupEmployee(ctx, principal.TenantID, employeeID)
	if errors.Is(err, ErrEmployeeNotFound) {
		// Existence of other employees is not disclosed to self-readers.
		return Employee{}, ErrForbidden
	}
	if err != nil {
		return Employee{}, err
	}
	if emp.UserID != principal.UserID {
		return Employee{}, ErrForbidden
	}
	return emp, nil
}

func (s *Service) require(ctx context.Context, principal auth.UserContext, permission string) error {
	ok, err := s.can(ctx, principal, permission)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Service) can(ctx context.Context, principal auth.UserContext, permission string) (bool, error) {
	if s.authz == nil || principal.RoleName == "" {
		return false, nil
	}
	ok, err := s.authz.HasPermission(ctx, principal.RoleName, permission)
	if err != nil {
		return false, fmt.Errorf("compensation: permission check: %w", err)
	}
	return ok, nil
}

func (s *Service) lookupEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	if employeeID == "" {
		return Employee{}, ErrEmployeeNotFound
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	emp, err := s.directory.LookupEmployee(lookupCtx, tenantID, employeeID)
	if err != nil {
		return Employee{}, storageError("lookup employee", err)
	}
	return emp, nil
}

func (s *Service) recordAudit(ctx context.Context, principal auth.UserContext, employeeID string, before Template, existed bool, after Template) {
	if s.audit == nil {
		return
	}
	var prior any
	if existed {
		prior = before
	}
	err := s.audit.Record(ctx, principal.TenantID, principal.UserID, ActionSet, EntityType, employeeID,
		requestctx.GetRequestID(ctx), requestctx.GetClientIP(ctx), prior, after)
	if err != nil {
		s.logger.WarnContext(ctx, "audit compensation.set failed", "employeeId", employeeID, "err", err)
	}
}

// storageError passes domain errors and unreadable records through and marks
// everything else, including cancellations and deadlines, as a retryable
// storage failure.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsValidationError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEmployeeNotFound),
		errors.Is(err, ErrTransientStorage),
		errors.Is(err, ErrCorruptRecord),
		errors.Is(err, ErrForbidden):
		return err
	default:
		return fmt.Errorf("compensation: %s: %w: %w", op, ErrTransientStorage, err)
	}
}

func (s *Service) count(event string) {
	if s.counter != nil {
		s.counter.Count(event)
	}
}

type noTx struct{}

func (noTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
