package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	r.Route("/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES (rate limited per IP) ====================
		r.Group(func(r chi.Router) {
			r.Use(g.limit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Logout cukup pakai refresh token (cookie / body)
		r.Post("/logout", authHandler.Logout)

		// ==================== PROTECTED ROUTES ====================
		r.With(g.auth).Get("/me", authHandler.Me)
	})
}
