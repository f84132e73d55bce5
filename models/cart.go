package models

import "time"

// Cart holds the line items of one shopper. Exactly one of UserID or
// SessionID is set while the cart is live; the unique indexes enforce at
// most one active cart per owner (Postgres unique indexes ignore NULLs).
type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    *string    `gorm:"uniqueIndex" json:"user_id,omitempty"`
	SessionID *string    `gorm:"uniqueIndex" json:"session_id,omitempty"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index;uniqueIndex:idx_cart_subproduct" json:"cart_id"`
	SubproductID uint      `gorm:"uniqueIndex:idx_cart_subproduct" json:"subproduct_id"`
	Quantity     int       `gorm:"not null" json:"quantity"` // always >= 1; the row is deleted instead of reaching 0
	AddedAt      time.Time `json:"added_at"`
}

// CartLine is the read model for the cart page: a cart item joined with
// its SKU and product display data. Not a table.
type CartLine struct {
	SubproductID uint    `json:"subproduct_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	VariantName  string  `json:"variant_name"`
	Image        string  `json:"image"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	LineTotal    float64 `json:"line_total"`
	Stock        int     `json:"stock"`
	Available    bool    `json:"available"`
}
