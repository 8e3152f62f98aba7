package response

import (
	"encoding/json"
	"time"

	"ppob-backend/internal/data/entity"
)

type TransactionResponse struct {
	ID           string          `json:"id"`
	RefID        string          `json:"ref_id"`
	UserID       string          `json:"user_id"`
	Username     string          `json:"username,omitempty"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	BuyerSkuCode string          `json:"buyer_sku_code"`
	CustomerNo   string          `json:"customer_no"`
	Status       string          `json:"status"`
	SN           string          `json:"sn"`
	Message      string          `json:"message"`
	RawResponse  json.RawMessage `json:"raw_response,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type TransactionStatusResponse struct {
	RefID     string    `json:"ref_id"`
	Status    string    `json:"status"`
	SN        string    `json:"sn"`
	UpdatedAt time.Time `json:"updated_at"`
	Cached    bool      `json:"cached"`
}

type WebhookResponse struct {
	RefID   string `json:"ref_id"`
	Status  string `json:"status"`
	Applied bool   `json:"applied"`
}

func TransactionToResponse(t *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID.String(),
		RefID:        t.RefID,
		UserID:       t.UserID.String(),
		ProductID:    t.ProductID.String(),
		BuyerSkuCode: t.BuyerSkuCode,
		CustomerNo:   t.CustomerNo,
		Status:       t.Status,
		SN:           t.SN,
		Message:      t.Message,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	// raw_response disimpan apa adanya, hanya ditampilkan kalau JSON valid
	if t.RawResponse != "" && json.Valid([]byte(t.RawResponse)) {
		resp.RawResponse = json.RawMessage(t.RawResponse)
	}
	return resp
}

func TransactionDetailToResponse(d *entity.TransactionDetail) TransactionResponse {
	resp := TransactionToResponse(&d.Transaction)
	resp.Username = d.Username
	resp.ProductName = d.ProductName
	return resp
}
