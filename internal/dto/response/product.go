package response

import (
	"time"

	"github.com/shopspring/decimal"

	"ppob-backend/internal/data/entity"
)

type ProductResponse struct {
	ID           string          `json:"id"`
	IDProvider   string          `json:"id_provider"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	BasePrice    decimal.Decimal `json:"base_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Profit       decimal.Decimal `json:"profit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func ProductToResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		IDProvider:   p.IDProvider,
		Name:         p.Name,
		Category:     p.Category,
		BasePrice:    p.BasePrice,
		SellingPrice: p.SellingPrice,
		Profit:       p.Profit,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
