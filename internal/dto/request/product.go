package request

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	IDProvider   string          `json:"id_provider" validate:"required,max=100"`
	Name         string          `json:"name" validate:"required,max=255"`
	Category     string          `json:"category" validate:"max=100"`
	BasePrice    decimal.Decimal `json:"base_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// UpdateProductRequest is a partial update; nil fields keep their value.
type UpdateProductRequest struct {
	IDProvider   *string          `json:"id_provider" validate:"omitempty,max=100"`
	Name         *string          `json:"name" validate:"omitempty,max=255"`
	Category     *string          `json:"category" validate:"omitempty,max=100"`
	BasePrice    *decimal.Decimal `json:"base_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}
