package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Harga is stored as a bare JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a stock item held in the warehouse data file.
// The JSON field names are the on-disk contract of produk.json.
type Product struct {
	ID           int             `json:"Id"`
	Name         string          `json:"Nama"`
	Quantity     int             `json:"Jumlah"`
	Price        decimal.Decimal `json:"Harga"`
	LastModified Timestamp       `json:"Timestamp"`
}

// ProductInput carries the mutable fields supplied by an operator on add or update.
type ProductInput struct {
	Name     string          `validate:"required,max=100"`
	Quantity int             `validate:"gte=0"`
	Price    decimal.Decimal `validate:"gte=0"`
}
