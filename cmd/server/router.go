package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskdeck-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskdeck-api/internal/api/middleware"
	"github.com/phrazzld/taskdeck-api/internal/service/auth"
	"github.com/phrazzld/taskdeck-api/internal/service/tasks"
)

func (app *application) setupRouter() http.Handler {
	return newRouter(app.taskService, app.jwtService, app.logger)
}

// newRouter builds the HTTP routes. Everything under /api/tasks requires a
// bearer token.
func newRouter(taskService tasks.Service, jwtService auth.JWTService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)
	taskHandler := api.NewTaskHandler(taskService, logger)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		taskHandler.Routes(r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
