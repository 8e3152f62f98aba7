package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Product     *ProductHandler
	Branch      *BranchHandler
	Nasabah     *NasabahHandler
	Transaction *TransactionHandler
	Webhook     *WebhookHandler
	Provider    *ProviderHandler
	Report      *ReportHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, config, log),
		User:        NewUserHandler(service.User, log),
		Product:     NewProductHandler(service.Product, log),
		Branch:      NewBranchHandler(service.Branch, log),
		Nasabah:     NewNasabahHandler(service.Nasabah, log),
		Transaction: NewTransactionHandler(service.Transaction, log),
		Webhook:     NewWebhookHandler(service.Webhook, log),
		Provider:    NewProviderHandler(service.Provider, log),
		Report:      NewReportHandler(service.Report, log),
	}
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched so services report missing fields as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// identity returns the caller set by the auth middleware.
func identity(w http.ResponseWriter, r *http.Request) (utils.Identity, bool) {
	id, ok := utils.GetIdentity(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
	}
	return id, ok
}

// handleServiceError maps service error kinds to HTTP responses. Unknown
// errors are logged and hidden behind a generic message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	msg := "Internal server error"
	if errors.As(err, &svcErr) {
		msg = svcErr.Message
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		var fields any
		if svcErr != nil && len(svcErr.Fields) > 0 {
			fields = svcErr.Fields
		}
		utils.ResponseBadRequest(w, msg, fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case errors.Is(err, usecase.ErrUpstream):
		log.Error(operation+" failed - provider error", zap.Error(err))
		utils.ResponseInternalError(w, msg)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// pageRequest reads ?page= and ?per_page= (or ?limit=) from the query string.
func pageRequest(r *http.Request) request.PaginatedRequest {
	q := r.URL.Query()
	perPage := q.Get("per_page")
	if perPage == "" {
		perPage = q.Get("limit")
	}
	page, limit := utils.NormalizePage(utils.ParseInt(q.Get("page"), 1), utils.ParseInt(perPage, 10))
	return request.PaginatedRequest{Page: page, PerPage: limit}
}
