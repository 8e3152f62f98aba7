package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/pkg/database"
)

// Period bounds a report on created_at; nil sides are open.
type Period struct {
	From *time.Time
	To   *time.Time
}

type ProductSales struct {
	ProductID uuid.UUID
	Name      string
	TotalSold int64
}

type RevenueSummary struct {
	TotalRevenue      decimal.Decimal
	TotalProfit       decimal.Decimal
	TotalTransactions int64
}

type DailyRevenue struct {
	Date         string
	TotalRevenue decimal.Decimal
}

// ReportRepository aggregates successful transactions. Revenue and profit use
// the product's current prices.
type ReportRepository interface {
	TopProducts(ctx context.Context, period Period, limit int) ([]ProductSales, error)
	Revenue(ctx context.Context, period Period) (*RevenueSummary, error)
	DailyRevenue(ctx context.Context, period Period) ([]DailyRevenue, error)
}

type reportRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReportRepository(db database.PgxIface, log *zap.Logger) ReportRepository {
	return &reportRepository{
		db:  db,
		log: log.With(zap.String("repository", "report")),
	}
}

// $1 = success statuses, $2 = from, $3 = to
const successWhere = `
		WHERE t.status = ANY($1::text[])
		  AND ($2::timestamptz IS NULL OR t.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR t.created_at <= $3)`

func (r *reportRepository) TopProducts(ctx context.Context, period Period, limit int) ([]ProductSales, error) {
	query := `
		SELECT t.product_id, COALESCE(p.name, 'Produk tidak diketahui'), COUNT(*) AS total_sold
		FROM transactions t
		LEFT JOIN products p ON p.id = t.product_id` + successWhere + `
		GROUP BY t.product_id, p.name
		ORDER BY total_sold DESC, p.name
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, query, entity.SuccessStatuses, period.From, period.To, limit)
	if err != nil {
		r.log.Error("Failed to query top products", zap.Error(err))
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.TotalSold); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}

	return out, nil
}

func (r *reportRepository) Revenue(ctx context.Context, period Period) (*RevenueSummary, error) {
	query := `
		SELECT COALESCE(SUM(p.selling_price), 0),
		       COALESCE(SUM(p.selling_price - p.base_price), 0),
		       COUNT(*)
		FROM transactions t
		JOIN products p ON p.id = t.product_id` + successWhere

	var s RevenueSummary
	err := r.db.QueryRow(ctx, query, entity.SuccessStatuses, period.From, period.To).
		Scan(&s.TotalRevenue, &s.TotalProfit, &s.TotalTransactions)
	if err != nil {
		r.log.Error("Failed to query revenue", zap.Error(err))
		return nil, fmt.Errorf("revenue: %w", err)
	}

	return &s, nil
}

func (r *reportRepository) DailyRevenue(ctx context.Context, period Period) ([]DailyRevenue, error) {
	query := `
		SELECT to_char(date_trunc('day', t.created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(p.selling_price), 0)
		FROM transactions t
		JOIN products p ON p.id = t.product_id` + successWhere + `
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, entity.SuccessStatuses, period.From, period.To)
	if err != nil {
		r.log.Error("Failed to query daily revenue", zap.Error(err))
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	var out []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Date, &d.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily revenue: %w", err)
	}

	return out, nil
}
