package compensationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/compensation"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Get(ctx context.Context, principal auth.UserContext, employeeID string) (compensation.Compensation, error)
	Set(ctx context.Context, principal auth.UserContext, employeeID string, t compensation.Template) (compensation.SetResult, error)
	Preview(ctx context.Context, principal auth.UserContext, t compensation.Template) (compensation.Breakdown, error)
	List(ctx context.Context, principal auth.UserContext, limit, offset int) (compensation.Page, error)
	History(ctx context.Context, principal auth.UserContext, employeeID string, limit, offset int) ([]audit.Event, int, error)
	Statement(ctx context.Context, principal auth.UserContext, employeeID string, w io.Writer) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/compensation", func(r chi.Router) {
		r.With(h.guard(auth.PermCompensationPreview)).Get("/defaults", h.handleDefaults)
		r.With(h.guard(auth.PermCompensationPreview)).Post("/preview", h.handlePreview)
		r.With(h.guard(auth.PermCompensationRead)).Get("/", h.handleList)
	})
	r.Route("/employees/{employeeID}/compensation", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.With(h.guard(auth.PermCompensationWrite)).Put("/", h.handleSet)
		r.With(h.guard(auth.PermCompensationWrite)).Post("/", h.handleSet)
		r.With(h.guard(auth.PermCompensationRead)).Get("/history", h.handleHistory)
		r.Get("/statement", h.handleStatement)
	})
}

// guard rejects early at the edge; the service repeats the check.
func (h *Handler) guard(permission string) func(http.Handler) http.Handler {
	if h.Perms == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequirePermission(permission, h.Perms)
}

func (h *Handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	defaults := compensation.DefaultTemplate()
	api.Success(w, map[string]any{
		"template":  toTemplateResponse(defaults),
		"breakdown": toBreakdownResponse(compensation.Derive(defaults)),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	tpl, ok := decodeTemplate(w, r)
	if !ok {
		return
	}
	breakdown, err := h.Service.Preview(r.Context(), user, tpl)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"breakdown": toBreakdownResponse(breakdown)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, compensation.DefaultPageLimit, compensation.MaxPageLimit)
	result, err := h.Service.List(r.Context(), user, page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]compensationResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toCompensationResponse(item))
	}
	api.Success(w, api.ListData{Items: items, Total: result.Total, Limit: page.Limit, Offset: page.Offset}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	comp, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, toCompensationResponse(comp), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	tpl, ok := decodeTemplate(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Set(r.Context(), user, chi.URLParam(r, "employeeID"), tpl)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := toCompensationResponse(result.Compensation)
	if result.Created {
		api.Created(w, body, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, body, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, compensation.DefaultPageLimit, compensation.MaxPageLimit)
	events, total, err := h.Service.History(r.Context(), user, chi.URLParam(r, "employeeID"), page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, api.ListData{Items: toHistoryEntries(events), Total: total, Limit: page.Limit, Offset: page.Offset}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	var buf bytes.Buffer
	if err := h.Service.Statement(r.Context(), user, employeeID, &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="compensation-`+employeeID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, false
	}
	return user, true
}

func decodeTemplate(w http.ResponseWriter, r *http.Request) (compensation.Template, bool) {
	var payload templatePayload
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return compensation.Template{}, false
	}
	tpl, err := payload.template()
	if err != nil {
		writeError(w, r, err)
		return compensation.Template{}, false
	}
	return tpl, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if verr, ok := compensation.AsValidationError(err); ok {
		issues := make([]shared.ValidationIssue, 0, len(verr.Issues))
		for _, issue := range verr.Issues {
			issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
		}
		shared.FailValidation(w, requestID, issues)
		return
	}
	switch {
	case errors.Is(err, compensation.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, compensation.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, compensation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "compensation template not found", requestID)
	case errors.Is(err, compensation.ErrTransientStorage):
		slog.WarnContext(r.Context(), "compensation storage unavailable", "err", err, "requestId", requestID)
		w.Header().Set("Retry-After", "1")
		api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable, retry the request", requestID)
	default:
		slog.ErrorContext(r.Context(), "compensation request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}
