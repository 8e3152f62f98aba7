package wire

import (
	"github.com/go-chi/chi/v5"

	"ppob-backend/internal/adaptor"
)

func wireBranch(r chi.Router, branchHandler *adaptor.BranchHandler, nasabahHandler *adaptor.NasabahHandler, g guards) {
	// Branch dan nasabah hanya untuk admin
	r.Route("/api/branch", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Get("/", branchHandler.GetBranches)
		r.Post("/", branchHandler.CreateBranch)
		r.Get("/{id}", branchHandler.GetBranchByID)
		r.Put("/{id}", branchHandler.UpdateBranch)
		r.Delete("/{id}", branchHandler.DeleteBranch)
		r.Get("/{id}/nasabah", branchHandler.GetBranchNasabah)
	})

	r.Route("/api/nasabah", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Get("/", nasabahHandler.GetAll)
		r.Post("/", nasabahHandler.Create)
		r.Get("/{id}", nasabahHandler.GetByID)
		r.Put("/{id}", nasabahHandler.Update)
		r.Delete("/{id}", nasabahHandler.Delete)
	})
}
