package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireTransaction(r chi.Router, trxHandler *adaptor.TransactionHandler, webhookHandler *adaptor.WebhookHandler, g guards) {
	r.Route("/transactions", func(r chi.Router) {
		// Legacy callback path, same handler as /api/digiflazz/webhook
		r.Post("/callback/digiflazz", webhookHandler.Digiflazz)

		// ==================== PROTECTED ROUTES (require auth) ====================
		r.Group(func(r chi.Router) {
			r.Use(g.auth)

			r.Get("/", trxHandler.List)
			r.Post("/order", trxHandler.Order)
			r.Get("/ref/{refId}/status", trxHandler.StatusByRef)
			r.Get("/{id}", trxHandler.Get)
		})

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.auth)
			r.Use(g.admin)

			r.Post("/", trxHandler.Create)
			r.Put("/{id}/status", trxHandler.UpdateStatus)
			r.Delete("/{id}", trxHandler.Delete)
		})
	})
}
