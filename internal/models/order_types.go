package models

import (
	"time"
)

// Order lifecycle. CANCELLED is terminal and restores stock.
const (
	OrderPending    = "PENDING"
	OrderConfirmed  = "CONFIRMED"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

// Payment methods and statuses.
const (
	PaymentBankTransfer   = "BANK_TRANSFER"
	PaymentCurrentAccount = "CURRENT_ACCOUNT"

	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
)

// ShippingAddress is denormalized onto the order as a JSON column, so the
// order keeps the address exactly as it was at checkout time.
type ShippingAddress struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	District string `json:"district,omitempty"`
	Phone    string `json:"phone" binding:"required"`
}

// Order is the model for the 'orders' table. Totals are computed once at
// checkout and never recalculated.
type Order struct {
	ID          int64  `json:"id" db:"id"`
	OrderNumber string `json:"orderNumber" db:"order_number"`
	UserID      int64  `json:"userId" db:"user_id"`
	Status      string `json:"status" db:"status"`

	Subtotal       float64 `json:"subtotal" db:"subtotal"`
	DiscountRate   float64 `json:"discountRate" db:"discount_rate"`
	DiscountAmount float64 `json:"discountAmount" db:"discount_amount"`
	VatAmount      float64 `json:"vatAmount" db:"vat_amount"`
	Total          float64 `json:"total" db:"total"`

	ShippingAddress ShippingAddress `json:"shippingAddress" db:"-"`
	CargoCompany    *string         `json:"cargoCompany,omitempty" db:"cargo_company"`
	TrackingNumber  *string         `json:"trackingNumber,omitempty" db:"tracking_number"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually)
	CustomerName *string     `json:"customerName,omitempty" db:"-"`
	Items        []OrderItem `json:"items,omitempty" db:"-"`
	Payment      *Payment    `json:"payment,omitempty" db:"-"`
}

// OrderItem is an immutable snapshot of one line at order time. Later price
// or product changes never touch historical orders.
type OrderItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"orderId" db:"order_id"`
	ProductID   int64   `json:"productId" db:"product_id"`
	VariantID   *int64  `json:"variantId,omitempty" db:"variant_id"`
	ProductName string  `json:"productName" db:"product_name"`
	VariantInfo *string `json:"variantInfo,omitempty" db:"variant_info"`

	Quantity     int     `json:"quantity" db:"quantity"`
	UnitPrice    float64 `json:"unitPrice" db:"unit_price"`
	DiscountRate float64 `json:"discountRate" db:"discount_rate"`
	VatRate      float64 `json:"vatRate" db:"vat_rate"`
	LineTotal    float64 `json:"lineTotal" db:"line_total"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Payment is the model for the 'payments' table; exactly one per order.
type Payment struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"orderId" db:"order_id"`
	Method    string    `json:"method" db:"method"`
	Status    string    `json:"status" db:"status"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
