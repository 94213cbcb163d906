// Package router sets up all HTTP routes and middleware chains for the
// pressroom API. Reads are public; every write requires a bearer token.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/handlers"
	"pressroom/internal/middleware"
	"pressroom/internal/render"
)

// New creates the configured Chi router. limiter may be nil to disable
// rate limiting of authenticated writes.
func New(api *handlers.API, jwtSecret string, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusNotFound, "not_found", "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusMethodNotAllowed, render.KindMethodNotAllowed, "Method not allowed.")
	})

	r.Get("/health", api.Health)

	// writes wraps a route group in bearer auth and the write limiter.
	writes := func(r chi.Router) chi.Router {
		w := r.With(middleware.RequireAuth(jwtSecret))
		if limiter != nil {
			w = w.With(limiter.Middleware)
		}
		return w
	}

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", api.ListArticles)
		r.Get("/{ref}", api.GetArticle)

		w := writes(r)
		w.Post("/", api.CreateArticle)
		w.Put("/{ref}", api.UpdateArticle)
		w.Delete("/{ref}", api.DeleteArticle)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", api.ListCategories)

		w := writes(r)
		w.Post("/", api.CreateCategory)
		w.Put("/{ref}", api.UpdateCategory)
		w.Delete("/{ref}", api.DeleteCategory)
	})

	writes(r).Post("/uploads/presign", api.PresignUpload)

	return r
}
