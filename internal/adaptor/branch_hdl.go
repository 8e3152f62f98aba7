package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type BranchHandler struct {
	service usecase.BranchService
	log     *zap.Logger
}

func NewBranchHandler(service usecase.BranchService, log *zap.Logger) *BranchHandler {
	return &BranchHandler{
		service: service,
		log:     log.With(zap.String("handler", "branch")),
	}
}

func (h *BranchHandler) GetBranches(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetBranches(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get branches")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

func (h *BranchHandler) GetBranchByID(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetBranchByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get branch")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

// GetBranchNasabah handles GET /api/branch/{id}/nasabah
func (h *BranchHandler) GetBranchNasabah(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetBranchNasabah(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get branch nasabah")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req request.BranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.CreateBranch(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create branch")
		return
	}
	utils.ResponseCreated(w, "Branch created", resp)
}

func (h *BranchHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req request.BranchUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateBranch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update branch")
		return
	}
	utils.ResponseSuccess(w, "Branch updated", resp)
}

func (h *BranchHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBranch(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete branch")
		return
	}
	utils.ResponseSuccess(w, "Branch deleted", nil)
}
