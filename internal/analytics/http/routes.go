package analytichttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/atlasops/atlas-admin/internal/authz"
)

// MountRoutes registers the analytics endpoints. The dashboard summary only
// needs the dashboard permission; the deeper aggregates need analytics.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequirePermission(authz.PermViewDashboard))
		gr.Get("/dashboard", h.handleSummary)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequirePermission(authz.PermViewAnalytics))
		gr.Get("/users/counts", h.handleCounts)
		gr.Get("/users/growth", h.handleGrowth)
		gr.Get("/users/top", h.handleTopUsers)
		gr.Get("/users/segments", h.handleSegmentation)
		gr.Get("/activity/categories", h.handleBreakdown)
	})
	r.Post("/dashboard/refresh", h.handleRefresh)
}
