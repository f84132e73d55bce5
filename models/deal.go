package models

import "time"

type DealType string

const (
	DealTypeProduct  DealType = "product"
	DealTypeCategory DealType = "category"
	DealTypeBrand    DealType = "brand"
	DealTypeCart     DealType = "cart"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Deal is an admin-defined discount rule. Only the relation matching
// DealType is consulted when matching: Products for "product" deals,
// Categories for "category", Brands for "brand"; "cart" deals match the
// whole cart and may require a minimum cart amount. The engine treats
// deals as read-only.
type Deal struct {
	ID             uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string       `gorm:"not null" json:"name"`
	DiscountAmount float64      `gorm:"not null" json:"discount_amount"` // percent for percentage deals, currency otherwise
	DiscountType   DiscountType `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	DealType       DealType     `gorm:"type:VARCHAR(20);not null;index" json:"deal_type"`
	StartDate      time.Time    `gorm:"not null" json:"start_date"`
	EndDate        time.Time    `gorm:"not null" json:"end_date"`
	Active         bool         `gorm:"not null;default:true" json:"active"`
	MinimumAmount  *float64     `json:"minimum_amount,omitempty"` // cart deals only
	Metadata       string       `json:"metadata,omitempty"`

	Products   []Product  `gorm:"many2many:deal_products" json:"products,omitempty"`
	Categories []Category `gorm:"many2many:deal_categories" json:"categories,omitempty"`
	Brands     []Brand    `gorm:"many2many:deal_brands" json:"brands,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InEffect reports whether the deal applies at the given instant.
func (d *Deal) InEffect(now time.Time) bool {
	return d.Active && !now.Before(d.StartDate) && !now.After(d.EndDate)
}
