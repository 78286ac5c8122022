package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/press", h.Press)
		r.Post("/sequence", h.Sequence)
		r.Get("/display", h.Display)
		r.Post("/evaluate", h.Evaluate)
		r.Get("/keypad", h.Keypad)
		r.Get("/clipboard", h.Clipboard)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.History)
			r.Delete("/", h.ClearHistory)
			r.Delete("/{index}", h.DeleteHistory)
			r.Post("/{index}/copy", h.CopyHistory)
		})
	})
}
