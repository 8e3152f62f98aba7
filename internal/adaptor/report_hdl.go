package adaptor

import (
	"net/http"

	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

type ReportHandler struct {
	service usecase.ReportService
	log     *zap.Logger
}

func NewReportHandler(service usecase.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log.With(zap.String("handler", "report")),
	}
}

// TopProducts handles GET /reports/top-products?limit=5
func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 0)

	resp, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		handleServiceError(w, h.log, err, "top products report")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

// Revenue handles GET /reports/revenue?startDate=&endDate=
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := request.RevenueReportRequest{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}

	resp, err := h.service.Revenue(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "revenue report")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}

// Dashboard handles GET /reports/dashboard?days=7
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := utils.ParseInt(r.URL.Query().Get("days"), 0)

	resp, err := h.service.Dashboard(r.Context(), days)
	if err != nil {
		handleServiceError(w, h.log, err, "dashboard report")
		return
	}
	utils.ResponseSuccess(w, "success", resp)
}
