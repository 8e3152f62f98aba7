package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nasabah is a customer account held at a branch.
type Nasabah struct {
	BaseNoDelete
	Name     string          `db:"name"`
	Balance  decimal.Decimal `db:"balance"`
	BranchID uuid.UUID       `db:"branch_id"`
	Phone    string          `db:"phone"`
}
