package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireReport(r chi.Router, reportHandler *adaptor.ReportHandler, g guards) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/reports", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Get("/top-products", reportHandler.TopProducts)
		r.Get("/revenue", reportHandler.Revenue)
		r.Get("/dashboard", reportHandler.Dashboard)
	})
}
