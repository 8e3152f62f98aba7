package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/users", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Get("/", userHandler.GetAllUsers)
		r.Post("/", userHandler.CreateUser)
		r.Put("/{id}/status", userHandler.UpdateStatus)
		r.Patch("/{id}/status", userHandler.UpdateStatus)
	})
}
