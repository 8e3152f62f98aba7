package request

type RevenueReportRequest struct {
	// StartDate and EndDate are YYYY-MM-DD; both must be set to bound the report.
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}
