package roles

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Handler serves role catalogue requests.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the role endpoints.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequirePermission(authz.PermViewRoles))
		gr.Get("/", h.handleList)
		gr.Get("/{name}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": infos})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get role", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}
