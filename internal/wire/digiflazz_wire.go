package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireDigiflazz(r chi.Router, webhookHandler *adaptor.WebhookHandler, providerHandler *adaptor.ProviderHandler, g guards) {
	// ==================== PROVIDER CALLBACKS (public) ====================
	r.Post("/api/digiflazz/webhook", webhookHandler.Digiflazz)
	r.Post("/digiflazz/webhook", webhookHandler.Digiflazz)

	// ==================== PROVIDER PASSTHROUGH ====================
	r.With(g.auth).Get("/digiflazz/pricelist", providerHandler.PriceList)
	r.With(g.auth, g.admin).Get("/digiflazz/balance", providerHandler.Balance)
}
