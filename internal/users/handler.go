package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    *authz.Guard
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validate: validator.New()}
}

// MountRoutes registers user routes. Reads are gated by middleware; mutations
// additionally resolve the acting principal through the raising guard.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequirePermission(authz.PermViewUsers))
		gr.Get("/", h.list)
		gr.Get("/{id}", h.get)
	})
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Put("/{id}/role", h.changeRole)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Search: strings.TrimSpace(q.Get("search")),
	}
	if v := strings.TrimSpace(q.Get("role")); v != "" {
		role := authz.Role(v)
		if !role.Valid() {
			httpx.RespondError(w, shared.NewValidationError("role", "unknown role"))
			return
		}
		filters.Role = role
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status := authz.Status(v)
		if !status.Valid() {
			httpx.RespondError(w, shared.NewValidationError("status", "unknown status"))
			return
		}
		filters.Status = status
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := h.service.List(r.Context(), filters, page, pageSize)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequirePermission(r.Context(), authz.PermCreateUsers)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := h.validateStruct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Create(r.Context(), actor, input, requestMeta(r))
	if err != nil {
		h.logError("create user", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequirePermission(r.Context(), authz.PermEditUsers)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := h.validateStruct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Update(r.Context(), actor, id, input, requestMeta(r))
	if err != nil {
		h.logError("update user", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type roleChangeRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequirePermission(r.Context(), authz.PermManageUserRoles)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req roleChangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := h.validateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.ChangeRole(r.Context(), actor, id, authz.Role(req.Role), requestMeta(r))
	if err != nil {
		h.logError("change role", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequirePermission(r.Context(), authz.PermDeleteUsers)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id, requestMeta(r)); err != nil {
		h.logError("delete user", err)
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validateStruct(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
		}
	}
	return &shared.ValidationError{Fields: fields}
}

// logError keeps expected client failures out of the error log.
func (h *Handler) logError(msg string, err error) {
	var (
		validationErr *shared.ValidationError
		conflictErr   *shared.ConflictError
	)
	if errors.Is(err, shared.ErrNotFound) || errors.As(err, &validationErr) || errors.As(err, &conflictErr) {
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func requestMeta(r *http.Request) RequestMeta {
	return RequestMeta{IPAddress: clientIP(r), UserAgent: r.UserAgent()}
}

func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		addr = addr[:idx]
	}
	return strings.Trim(addr, "[]")
}
