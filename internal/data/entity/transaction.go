package entity

import (
	"strings"

	"github.com/google/uuid"
)

type TransactionStatus = string

const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusSukses  = "SUKSES"
	TransactionStatusFailed  = "FAILED"
	TransactionStatusGagal   = "GAGAL"
	TransactionStatusUnknown = "UNKNOWN"
)

// SuccessStatuses are the stored values counted as a paid transaction.
var SuccessStatuses = []string{TransactionStatusSuccess, TransactionStatusSukses}

// FinalStatuses are the states a later PENDING report must not overwrite.
var FinalStatuses = []string{
	TransactionStatusSuccess, TransactionStatusSukses,
	TransactionStatusFailed, TransactionStatusGagal,
}

// NormalizeStatus upper-cases a provider status; empty becomes fallback.
func NormalizeStatus(s, fallback string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	return s
}

func IsFinalStatus(s string) bool {
	for _, f := range FinalStatuses {
		if s == f {
			return true
		}
	}
	return false
}

type Transaction struct {
	BaseNoDelete
	RefID        string    `db:"ref_id"`
	UserID       uuid.UUID `db:"user_id"`
	ProductID    uuid.UUID `db:"product_id"`
	BuyerSkuCode string    `db:"buyer_sku_code"`
	CustomerNo   string    `db:"customer_no"`
	Status       string    `db:"status"`
	SN           string    `db:"sn"`
	Message      string    `db:"message"`
	// RawResponse is the last provider body (order response or webhook) verbatim.
	RawResponse string `db:"raw_response"`
}

// TransactionDetail is a transaction joined with the names shown in listings.
type TransactionDetail struct {
	Transaction
	ProductName string `db:"product_name"`
	Username    string `db:"username"`
}
