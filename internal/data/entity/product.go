package entity

import "github.com/shopspring/decimal"

type Product struct {
	BaseNoDelete
	// IDProvider is the Digiflazz buyer_sku_code.
	IDProvider   string          `db:"id_provider"`
	Name         string          `db:"name"`
	Category     string          `db:"category"`
	BasePrice    decimal.Decimal `db:"base_price"`
	SellingPrice decimal.Decimal `db:"selling_price"`
	Profit       decimal.Decimal `db:"profit"`
}

// RecalculateProfit sets Profit = SellingPrice - BasePrice.
func (p *Product) RecalculateProfit() {
	p.Profit = p.SellingPrice.Sub(p.BasePrice)
}
