package models

import "time"

type OrderStatus string
type PaymentStatus string
type ShippingStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending   OrderStatus = "pending"   // order placed, awaiting confirmation
	OrderStatusConfirmed OrderStatus = "confirmed" // confirmed by seller
	OrderStatusShipped   OrderStatus = "shipped"   // out for delivery
	OrderStatusDelivered OrderStatus = "delivered" // customer received the items
	OrderStatusCancelled OrderStatus = "cancelled" // cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	// Shipping statuses
	ShippingStatusPending   ShippingStatus = "pending"
	ShippingStatusShipped   ShippingStatus = "shipped"
	ShippingStatusDelivered ShippingStatus = "delivered"
)

// Order is created only by checkout. Exactly one of UserID or GuestID is
// set. The item snapshot is immutable once written: later catalog or price
// changes never alter what the customer bought.
type Order struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrderRef       string         `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID         *string        `gorm:"index" json:"user_id,omitempty"`
	GuestID        *string        `gorm:"index" json:"guest_id,omitempty"`
	Items          []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    float64        `json:"total_amount"`
	DiscountAmount float64        `json:"discount_amount"`
	DealID         *uint          `json:"deal_id,omitempty"`
	Status         OrderStatus    `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus  PaymentStatus  `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	ShippingStatus ShippingStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"shipping_status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// OrderItem is a frozen snapshot of a cart line at purchase time.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index" json:"order_id"`
	ProductID    uint    `json:"product_id"`
	SubproductID uint    `json:"subproduct_id"`
	ProductName  string  `json:"product_name"`
	VariantName  string  `json:"variant_name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}
