package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	Deposit   decimal.Decimal `json:"deposit"`
	CheckedAt time.Time       `json:"checked_at"`
}

type OrderResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Provider    any                 `json:"provider,omitempty"`
}
