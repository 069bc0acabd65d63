package loan

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all loan endpoints onto the given router
// under the /loan prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/loan", func(r chi.Router) {
		r.Post("/balance", h.Balance)
		r.Post("/brute-force", h.BruteForce)
		r.Post("/bisection", h.Bisection)
		r.Post("/payment", h.Payment)
	})
}
