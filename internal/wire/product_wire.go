package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireProduct(r chi.Router, productHandler *adaptor.ProductHandler, g guards) {
	r.Route("/products", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", productHandler.GetProducts)
		r.Get("/{id}", productHandler.GetProductByID)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.auth)
			r.Use(g.admin)

			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})
}
