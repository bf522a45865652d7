package models

import "github.com/shopspring/decimal"

// Product is a catalogue entry. Price and cost are decimal-as-text in the
// store and must never pass through binary floats.
type Product struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	ManufacturerID int64           `db:"manufacturer_id" json:"manufacturer_id"`
	CategoryID     int64           `db:"category_id" json:"category_id"`
	Variation      *string         `db:"variation" json:"variation,omitempty"`
	Price          decimal.Decimal `db:"price" json:"price"`
	Cost           decimal.Decimal `db:"cost" json:"cost"`
	CreatedAt      string          `db:"created_at" json:"created_at"`
	UpdatedAt      string          `db:"updated_at" json:"updated_at"`
	// Joined names for display listings; not columns of the products table.
	ManufacturerName string `db:"-" json:"manufacturer_name,omitempty"`
	CategoryName     string `db:"-" json:"category_name,omitempty"`
}

// ProductStock is the quantity of a product held at a location.
type ProductStock struct {
	ProductID  int64  `db:"product_id" json:"product_id"`
	LocationID int64  `db:"location_id" json:"location_id"`
	Quantity   int    `db:"quantity" json:"quantity"`
	UpdatedAt  string `db:"updated_at" json:"updated_at"`
	// Joined names for display listings.
	ProductName  string `db:"-" json:"product_name,omitempty"`
	LocationName string `db:"-" json:"location_name,omitempty"`
}
