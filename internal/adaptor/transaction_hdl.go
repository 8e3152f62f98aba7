package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type TransactionHandler struct {
	service usecase.TransactionService
	log     *zap.Logger
}

func NewTransactionHandler(service usecase.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log.With(zap.String("handler", "transaction")),
	}
}

// Order handles POST /transactions/order
func (h *TransactionHandler) Order(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req request.OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Order(r.Context(), caller, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "place order")
		return
	}

	utils.ResponseCreated(w, "Order placed", resp)
}

// List handles GET /transactions?status=&page=&per_page=
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	req := request.TransactionListRequest{
		PaginatedRequest: pageRequest(r),
		Status:           r.URL.Query().Get("status"),
	}

	resp, err := h.service.List(r.Context(), caller, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list transactions")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Get handles GET /transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get transaction")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// StatusByRef handles GET /transactions/ref/{refId}/status
func (h *TransactionHandler) StatusByRef(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.service.StatusByRef(r.Context(), caller, chi.URLParam(r, "refId"))
	if err != nil {
		handleServiceError(w, h.log, err, "get transaction status")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Create handles POST /transactions (admin only)
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create transaction")
		return
	}

	utils.ResponseCreated(w, "Transaction recorded", resp)
}

// UpdateStatus handles PUT /transactions/{id}/status (admin only)
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTransactionStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update transaction status")
		return
	}

	utils.ResponseSuccess(w, "Transaction status updated", resp)
}

// Delete handles DELETE /transactions/{id} (admin only)
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction deleted", nil)
}
