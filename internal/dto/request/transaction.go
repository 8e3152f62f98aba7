package request

// OrderRequest identifies the product by id or by its provider sku code.
type OrderRequest struct {
	ProductID    string `json:"product_id" validate:"omitempty,uuid"`
	BuyerSkuCode string `json:"buyer_sku_code" validate:"omitempty,max=100"`
	CustomerNo   string `json:"customer_no" validate:"required,max=100"`
}

// CreateTransactionRequest records a transaction without calling the provider.
type CreateTransactionRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	ProductID  string `json:"product_id" validate:"required,uuid"`
	CustomerNo string `json:"customer_no" validate:"max=100"`
	Status     string `json:"status" validate:"omitempty,max=30"`
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" validate:"required,max=30"`
}

type TransactionListRequest struct {
	PaginatedRequest
	Status string
}
