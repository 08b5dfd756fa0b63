package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.HandleListTemplates)
			r.Post("/", h.HandleCreateTemplate)
			r.Post("/suggest", h.HandleSuggestTemplates)
			r.Get("/{templateId}", h.HandleGetTemplate)
			r.Delete("/{templateId}", h.HandleDeleteTemplate)
			r.Post("/{templateId}/apply", h.HandleApplyTemplate)
		})

		r.Post("/detect-vendor", h.HandleDetectVendor)
		r.Post("/transform", h.HandleTransform)
	})

	return r
}
