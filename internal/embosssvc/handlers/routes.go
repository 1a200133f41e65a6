package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Post("/auth/login", h.LoginHandler)

		// secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/cards", h.QueryHandler)
			r.Get("/cards/summary", h.SummaryHandler)
			r.Get("/cards/export", h.ExportHandler)

			// only admins may mutate the master table or manage users
			r.Group(func(r chi.Router) {
				r.Use(h.requireRole(models.RoleAdmin))

				r.Post("/cards/upload", h.UploadHandler)
				r.Get("/users", h.ListUsersHandler)
				r.Post("/users", h.CreateUserHandler)
				r.Delete("/users/{username}", h.DeactivateUserHandler)
			})
		})
	})
}

func (h *Handler) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := h.requestScope(r)
			if err != nil {
				h.CreateResponse(w, Response{Message: "unauthorized", Code: http.StatusUnauthorized, Error: err.Error()})
				return
			}
			for _, role := range roles {
				if scope.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.CreateResponse(w, Response{Message: "forbidden", Code: http.StatusForbidden})
		})
	}
}
