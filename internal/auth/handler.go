package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler serves the login and logout endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    *authz.Guard
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard *authz.Guard, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		guard:    guard,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the auth endpoints. Login is rate limited per IP to
// slow credential stuffing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		gr.Post("/login", h.handleLogin)
	})
	r.Post("/logout", h.handleLogout)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session unavailable")
		return
	}
	// Rotate the session ID so a pre-login cookie cannot be fixated.
	sess.ID = uuid.NewString()

	identity, err := h.service.Login(r.Context(), req.Email, req.Password, LoginMeta{
		SessionID: sess.ID,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		TTL:       h.sessions.TTL(),
	})
	if err != nil {
		if !errors.Is(err, shared.ErrAuthenticationRequired) {
			h.logger.Error("login", slog.Any("error", err), slog.String("email", req.Email))
		}
		httpx.RespondError(w, err)
		return
	}

	sess.SetUser(strconv.FormatInt(identity.UserID, 10))

	resp := map[string]any{"user": identity}
	if target := safeRedirect(r.URL.Query().Get("redirectTo")); target != "" {
		resp["redirectTo"] = target
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.CurrentPrincipal(r.Context())
	if err != nil {
		h.logger.Error("logout principal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if actor == nil {
		httpx.RespondError(w, shared.ErrAuthenticationRequired)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.ID != "" {
		meta := LoginMeta{IPAddress: clientIP(r), UserAgent: r.UserAgent()}
		if err := h.service.Logout(r.Context(), actor, sess.ID, meta); err != nil {
			h.logger.Error("logout", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	h.sessions.Destroy(sess)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "logged out"})
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

// safeRedirect only allows same-origin relative paths.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	return target
}

func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		addr = addr[:idx]
	}
	return strings.Trim(addr, "[]")
}
