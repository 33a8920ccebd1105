package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/atlasops/atlas-admin/internal/analytics/http"
	audithttp "github.com/atlasops/atlas-admin/internal/audit/http"
	"github.com/atlasops/atlas-admin/internal/auth"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/observability"
	"github.com/atlasops/atlas-admin/internal/roles"
	"github.com/atlasops/atlas-admin/internal/settings"
	"github.com/atlasops/atlas-admin/internal/shared"
	"github.com/atlasops/atlas-admin/internal/users"
	"github.com/atlasops/atlas-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	AuditHandler     *audithttp.Handler
	SettingsHandler  *settings.Handler
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler

	Gate            authz.Gate
	AuthzMiddleware authz.Middleware
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"title":"Forbidden","detail":"your account does not have back-office access"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", func(gr chi.Router) {
		params.UsersHandler.MountRoutes(gr, params.AuthzMiddleware)
	})
	r.Route("/roles", func(gr chi.Router) {
		params.RolesHandler.MountRoutes(gr, params.AuthzMiddleware)
	})
	r.Route("/audit", func(gr chi.Router) {
		params.AuditHandler.MountRoutes(gr, params.AuthzMiddleware)
	})
	r.Route("/settings", func(gr chi.Router) {
		params.SettingsHandler.MountRoutes(gr, params.AuthzMiddleware)
	})
	r.Route("/analytics", func(gr chi.Router) {
		params.AnalyticsHandler.MountRoutes(gr, params.AuthzMiddleware)
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
