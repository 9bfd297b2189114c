package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skouter/recruit-api/internal/api"
	apiMiddleware "github.com/skouter/recruit-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.submission, app.status, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// AI task endpoints (protected)
		r.Route("/ai", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/analysis", taskHandler.SubmitAnalysis)
			r.Post("/generation", taskHandler.SubmitGeneration)
			r.Post("/evaluation", taskHandler.SubmitEvaluation)
			r.Post("/chat", taskHandler.SubmitChat)

			r.Get("/tasks/{taskID}/status", taskHandler.GetStatus)
			r.Get("/tasks/{taskID}/result", taskHandler.GetResult)
			r.Delete("/tasks/{taskID}", taskHandler.Cancel)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
