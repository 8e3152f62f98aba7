package adaptor

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/utils"
)

type WebhookHandler struct {
	service usecase.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// Digiflazz handles the provider callback. 200 stops provider retries, any
// other status makes Digiflazz deliver again.
func (h *WebhookHandler) Digiflazz(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.Reconcile(r.Context(), body, r.Header.Get(digiflazz.SignatureHeader))
	if err != nil {
		handleServiceError(w, h.log, err, "reconcile webhook")
		return
	}

	utils.ResponseSuccess(w, "Webhook processed", resp)
}
