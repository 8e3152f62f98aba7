package adaptor

import (
	"net/http"

	"go.uber.org/zap"

	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type ProviderHandler struct {
	service usecase.ProviderService
	log     *zap.Logger
}

func NewProviderHandler(service usecase.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log.With(zap.String("handler", "provider")),
	}
}

// PriceList handles GET /digiflazz/pricelist?cmd=prepaid|pasca
func (h *ProviderHandler) PriceList(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.PriceList(r.Context(), r.URL.Query().Get("cmd"))
	if err != nil {
		handleServiceError(w, h.log, err, "get price list")
		return
	}

	// body provider diteruskan apa adanya
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// Balance handles GET /digiflazz/balance (admin only)
func (h *ProviderHandler) Balance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Balance(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "check balance")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
