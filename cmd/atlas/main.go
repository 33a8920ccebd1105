package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlasops/atlas-admin/internal/analytics"
	analytichttp "github.com/atlasops/atlas-admin/internal/analytics/http"
	"github.com/atlasops/atlas-admin/internal/app"
	"github.com/atlasops/atlas-admin/internal/audit"
	audithttp "github.com/atlasops/atlas-admin/internal/audit/http"
	"github.com/atlasops/atlas-admin/internal/auth"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/observability"
	"github.com/atlasops/atlas-admin/internal/platform/cache"
	"github.com/atlasops/atlas-admin/internal/platform/db"
	"github.com/atlasops/atlas-admin/internal/roles"
	"github.com/atlasops/atlas-admin/internal/settings"
	"github.com/atlasops/atlas-admin/internal/shared"
	"github.com/atlasops/atlas-admin/internal/users"
	"github.com/atlasops/atlas-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "atlas_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	guard := authz.NewGuard(authz.NewRepository(pool))
	authzMW := authz.Middleware{Guard: guard, Logger: logger}
	gate := authz.Gate{
		Guard:             guard,
		Logger:            logger,
		ProtectedPrefixes: cfg.ProtectedPrefixList(),
		LoginPath:         cfg.LoginPath,
		UnauthorizedPath:  cfg.UnauthorizedPath,
	}

	recorder := audit.NewRecorder(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(logger, pool, authRepo, recorder)
	authHandler := auth.NewHandler(logger, authService, guard, sessionManager)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(pool, usersRepo, recorder)
	usersHandler := users.NewHandler(logger, usersService, guard)

	rolesService := roles.NewService(pool)
	rolesHandler := roles.NewHandler(logger, rolesService)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audithttp.NewHandler(logger, auditService)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(pool, settingsRepo, recorder)
	settingsHandler := settings.NewHandler(logger, settingsService, guard)

	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService, guard, jobClient, recorder)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		AuditHandler:     auditHandler,
		SettingsHandler:  settingsHandler,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Gate:             gate,
		AuthzMiddleware:  authzMW,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
