package settings

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Handler manages settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   *authz.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequirePermission(authz.PermViewSettings))
		gr.Get("/", h.list)
		gr.Get("/{key}", h.get)
	})
	r.Put("/{key}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	setting, err := h.service.Get(r.Context(), key)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}

type updateRequest struct {
	Value string `json:"value"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequirePermission(r.Context(), authz.PermEditSettings)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "malformed JSON"))
		return
	}
	setting, err := h.service.Update(r.Context(), actor, key, req.Value, r.RemoteAddr, r.UserAgent())
	if err != nil {
		var validationErr *shared.ValidationError
		if !errors.Is(err, shared.ErrNotFound) && !errors.As(err, &validationErr) {
			h.logger.Error("update setting", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}
