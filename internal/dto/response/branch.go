package response

import (
	"time"

	"github.com/shopspring/decimal"

	"ppob-backend/internal/data/entity"
)

type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type BranchNasabahResponse struct {
	Branch       BranchResponse    `json:"branch"`
	TotalNasabah int               `json:"total_nasabah"`
	Nasabah      []NasabahResponse `json:"nasabah"`
}

type NasabahResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	BranchID  string          `json:"branch_id"`
	Phone     string          `json:"phone"`
	CreatedAt time.Time       `json:"created_at"`
}

func BranchToResponse(b *entity.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
	}
}

func NasabahToResponse(n *entity.Nasabah) NasabahResponse {
	return NasabahResponse{
		ID:        n.ID.String(),
		Name:      n.Name,
		Balance:   n.Balance,
		BranchID:  n.BranchID.String(),
		Phone:     n.Phone,
		CreatedAt: n.CreatedAt,
	}
}
