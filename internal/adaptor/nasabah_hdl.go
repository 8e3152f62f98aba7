package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type NasabahHandler struct {
	service usecase.NasabahService
	log     *zap.Logger
}

func NewNasabahHandler(service usecase.NasabahService, log *zap.Logger) *NasabahHandler {
	return &NasabahHandler{
		service: service,
		log:     log.With(zap.String("handler", "nasabah")),
	}
}

func (h *NasabahHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get nasabah")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

func (h *NasabahHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get nasabah")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

func (h *NasabahHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.NasabahRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create nasabah")
		return
	}
	utils.ResponseCreated(w, "Nasabah created", resp)
}

func (h *NasabahHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.NasabahUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update nasabah")
		return
	}
	utils.ResponseSuccess(w, "Nasabah updated", resp)
}

func (h *NasabahHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete nasabah")
		return
	}
	utils.ResponseSuccess(w, "Nasabah deleted", nil)
}
