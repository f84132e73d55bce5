package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	BrandID     *uint          `json:"brand_id"`
	Brand       *Brand         `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Categories  []Category     `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Subproducts []Subproduct   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"subproducts,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Subproduct is a purchasable variant (SKU) of a product. Price and stock
// live here, not on the product.
type Subproduct struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name      string    `gorm:"not null" json:"name"` // variant label, e.g. "0.5L" or "XL / red"
	Price     float64   `gorm:"not null" json:"price"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	Available bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"unique;not null" json:"name"`
	Products []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
}

type Brand struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"unique;not null" json:"name"`
	Products []Product `gorm:"foreignKey:BrandID" json:"products,omitempty"`
}
