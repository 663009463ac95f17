// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for the users API. Mounted under
// /api/v1/users. The fixed routes (/top, /search) are declared before
// the wildcard profile route so chi resolves them first.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/top", h.ServeTopCreators)
	r.Get("/search", h.ServeSearch)

	r.Post("/", h.ServeCreate)
	r.Get("/{idOrAlias}", h.ServeGetUser)
	r.Patch("/{id}", h.ServeUpdate)
	r.Delete("/{id}", h.ServeDelete)

	r.Post("/{id}/follow/{targetID}", h.ServeToggleFollow)
	r.Get("/{id}/followers", h.ServeFollowers)
	r.Get("/{id}/following", h.ServeFollowing)

	return r
}
