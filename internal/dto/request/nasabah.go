package request

import "github.com/shopspring/decimal"

type NasabahRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Balance  *decimal.Decimal `json:"balance"`
	BranchID string           `json:"branch_id" validate:"required,uuid"`
	Phone    string           `json:"phone" validate:"omitempty,max=30"`
}

type NasabahUpdateRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Balance  *decimal.Decimal `json:"balance"`
	BranchID *string          `json:"branch_id" validate:"omitempty,uuid"`
	Phone    *string          `json:"phone" validate:"omitempty,max=30"`
}
