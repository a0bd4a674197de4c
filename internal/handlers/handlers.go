package handlers

import (
	"FieldScribe/internal/config"
	"FieldScribe/internal/middleware"
	"FieldScribe/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	entryService *service.EntryService,
	analysisService *service.AnalysisService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	if len(config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   config.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	entryHandler := NewEntryHandler(entryService, userService, logger, config)
	adminHandler := NewAdminHandler(userService, entryService, logger)
	analysisHandler := NewAnalysisHandler(analysisService, userService, logger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/logout", userHandler.Logout)
	r.Get("/api/shared/{token}", entryHandler.Shared)
	r.Get("/api/shared/{token}/export", entryHandler.ExportShared)
	r.Get("/api/shared/{token}/media/{mediaID}", entryHandler.OpenSharedMedia)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		// User routes
		r.Get("/api/user/me", userHandler.Me)
		r.Post("/api/user/password", userHandler.ChangePassword)

		// Entry routes
		r.Get("/api/entries", entryHandler.List)
		r.Post("/api/entries", entryHandler.Create)
		r.Get("/api/entries/{id}", entryHandler.Get)
		r.Put("/api/entries/{id}", entryHandler.Update)
		r.Delete("/api/entries/{id}", entryHandler.Delete)
		r.Post("/api/entries/{id}/share", entryHandler.PublishShare)
		r.Delete("/api/entries/{id}/share", entryHandler.RevokeShare)
		r.Get("/api/entries/{id}/export", entryHandler.Export)
		r.Post("/api/entries/{id}/media", entryHandler.AttachMedia)
		r.Get("/api/entries/{id}/media/{mediaID}", entryHandler.OpenMedia)
		r.Delete("/api/media/{mediaID}", entryHandler.DeleteMedia)

		// Analysis routes
		r.Post("/api/analysis", analysisHandler.Analyze)
		r.Get("/api/analysis", analysisHandler.List)
		r.Get("/api/analysis/export", analysisHandler.Export)
		r.Get("/api/analysis/{id}", analysisHandler.Get)

		// Admin routes
		r.Get("/api/admin/users", adminHandler.ListUsers)
		r.Post("/api/admin/users", adminHandler.CreateAdmin)
		r.Post("/api/admin/users/{id}/toggle-admin", adminHandler.ToggleAdmin)
		r.Delete("/api/admin/users/{id}", adminHandler.DeleteUser)
		r.Delete("/api/admin/entries/{id}", adminHandler.DeleteEntry)
	})

	return &Handler{Router: r}
}
