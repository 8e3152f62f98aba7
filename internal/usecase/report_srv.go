package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
)

const (
	defaultTopLimit      = 5
	maxTopLimit          = 100
	defaultDashboardDays = 7
	maxDashboardDays     = 366

	periodAllTime = "Semua periode (All Time)"
)

type ReportService interface {
	TopProducts(ctx context.Context, limit int) ([]response.TopProductResponse, error)
	Revenue(ctx context.Context, req *request.RevenueReportRequest) (*response.RevenueResponse, error)
	Dashboard(ctx context.Context, days int) (*response.DashboardResponse, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
	log        *zap.Logger
}

func NewReportService(reportRepo repository.ReportRepository, log *zap.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		now:        time.Now,
		log:        log.With(zap.String("service", "report")),
	}
}

func (s *reportService) TopProducts(ctx context.Context, limit int) ([]response.TopProductResponse, error) {
	if limit < 1 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	sales, err := s.reportRepo.TopProducts(ctx, repository.Period{}, limit)
	if err != nil {
		s.log.Error("Failed to build top products report", zap.Error(err))
		return nil, fmt.Errorf("top products: %w", err)
	}
	return toTopProducts(sales), nil
}

// Revenue is bounded only when both dates are given; the end date is inclusive.
func (s *reportService) Revenue(ctx context.Context, req *request.RevenueReportRequest) (*response.RevenueResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		period repository.Period
		label  = periodAllTime
	)
	if req.StartDate != "" && req.EndDate != "" {
		from, _ := time.Parse(time.DateOnly, req.StartDate)
		to, _ := time.Parse(time.DateOnly, req.EndDate)
		if to.Before(from) {
			return nil, validationError(map[string]string{"endDate": "Must not be before startDate"})
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		period = repository.Period{From: &from, To: &end}
		label = req.StartDate + " → " + req.EndDate
	}

	summary, err := s.reportRepo.Revenue(ctx, period)
	if err != nil {
		s.log.Error("Failed to build revenue report", zap.Error(err))
		return nil, fmt.Errorf("revenue: %w", err)
	}

	return &response.RevenueResponse{
		TotalRevenue:      summary.TotalRevenue,
		TotalProfit:       summary.TotalProfit,
		TotalTransactions: summary.TotalTransactions,
		Period:            label,
	}, nil
}

// Dashboard covers the last days days up to now.
func (s *reportService) Dashboard(ctx context.Context, days int) (*response.DashboardResponse, error) {
	if days < 1 {
		days = defaultDashboardDays
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	period := repository.Period{From: &start, To: &end}

	summary, err := s.reportRepo.Revenue(ctx, period)
	if err != nil {
		s.log.Error("Failed to build dashboard summary", zap.Error(err))
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	sales, err := s.reportRepo.TopProducts(ctx, period, defaultTopLimit)
	if err != nil {
		s.log.Error("Failed to build dashboard top products", zap.Error(err))
		return nil, fmt.Errorf("dashboard top products: %w", err)
	}

	daily, err := s.reportRepo.DailyRevenue(ctx, period)
	if err != nil {
		s.log.Error("Failed to build dashboard daily revenue", zap.Error(err))
		return nil, fmt.Errorf("dashboard daily revenue: %w", err)
	}

	dailyResp := make([]response.DailyRevenueResponse, len(daily))
	for i, d := range daily {
		dailyResp[i] = response.DailyRevenueResponse{Date: d.Date, TotalRevenue: d.TotalRevenue}
	}

	return &response.DashboardResponse{
		Summary: response.RevenueResponse{
			TotalRevenue:      summary.TotalRevenue,
			TotalProfit:       summary.TotalProfit,
			TotalTransactions: summary.TotalTransactions,
			Period:            start.Format(time.DateOnly) + " → " + end.Format(time.DateOnly),
		},
		TopProducts:  toTopProducts(sales),
		DailyRevenue: dailyResp,
	}, nil
}

func toTopProducts(sales []repository.ProductSales) []response.TopProductResponse {
	out := make([]response.TopProductResponse, len(sales))
	for i, ps := range sales {
		out[i] = response.TopProductResponse{
			ProductID: ps.ProductID.String(),
			Name:      ps.Name,
			TotalSold: ps.TotalSold,
		}
	}
	return out
}
