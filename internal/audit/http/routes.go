package audithttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

const exportRateLimit = 10
const exportRateWindow = time.Minute

// MountRoutes registers the audit endpoints. Export is rate limited per user
// because each call can scan up to the export cap.
func (h *Handler) MountRoutes(r chi.Router, authzMW authz.Middleware) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Group(func(gr chi.Router) {
		gr.Use(authzMW.RequirePermission(authz.PermViewAuditLogs))
		gr.Get("/", h.handleList)
		gr.With(limiter).Get("/export.csv", h.handleExport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
