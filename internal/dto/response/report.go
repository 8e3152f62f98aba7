package response

import "github.com/shopspring/decimal"

type TopProductResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	TotalSold int64  `json:"totalSold"`
}

type RevenueResponse struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	TotalTransactions int64           `json:"totalTransactions"`
	Period            string          `json:"period"`
}

type DailyRevenueResponse struct {
	Date         string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type DashboardResponse struct {
	Summary      RevenueResponse        `json:"summary"`
	TopProducts  []TopProductResponse   `json:"topProducts"`
	DailyRevenue []DailyRevenueResponse `json:"dailyRevenue"`
}
