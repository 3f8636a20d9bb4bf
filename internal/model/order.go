package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Order represents a placed customer order. Items, address and pricing are
// frozen at placement time.
type Order struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	OrderNumber           string        `json:"orderNumber" db:"order_number"`
	UserID                string        `json:"userId" db:"user_id"`
	UserName              string        `json:"userName" db:"user_name"`
	UserEmail             string        `json:"userEmail" db:"user_email"`
	Items                 []OrderItem   `json:"items"`
	DeliveryAddress       Address       `json:"deliveryAddress" db:"delivery_address"`
	DeliveryInstructions  *string       `json:"deliveryInstructions,omitempty" db:"delivery_instructions"`
	Pricing               OrderPricing  `json:"pricing"`
	Status                OrderStatus   `json:"status" db:"status"`
	StatusHistory         []StatusEntry `json:"statusHistory"`
	PaymentStatus         PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentMethod         *string       `json:"paymentMethod,omitempty" db:"payment_method"`
	CreatedAt             time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time     `json:"updatedAt" db:"updated_at"`
	EstimatedDeliveryTime *time.Time    `json:"estimatedDeliveryTime,omitempty" db:"estimated_delivery_time"`
	DeliveredAt           *time.Time    `json:"deliveredAt,omitempty" db:"delivered_at"`
}

// OrderItem is a line of an order with the product data frozen at order time.
type OrderItem struct {
	ID           uuid.UUID `json:"-" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	ProductID    string    `json:"productId" db:"product_id"`
	ProductName  string    `json:"productName" db:"product_name"`
	ProductImage string    `json:"productImage" db:"product_image"`
	Price        float64   `json:"price" db:"price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	VendorID     string    `json:"vendorId" db:"vendor_id"`
	VendorName   string    `json:"vendorName" db:"vendor_name"`
}

// OrderPricing is the price breakdown computed once at placement.
type OrderPricing struct {
	Subtotal    float64 `json:"subtotal" db:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee" db:"delivery_fee"`
	Tax         float64 `json:"tax" db:"tax"`
	Total       float64 `json:"total" db:"total"`
}

// StatusEntry is one append-only entry of an order's status history.
type StatusEntry struct {
	Status    OrderStatus `json:"status" db:"status"`
	Timestamp time.Time   `json:"timestamp" db:"created_at"`
	Note      *string     `json:"note,omitempty" db:"note"`
}

// PlaceOrderRequest represents the request payload for placing an order from the cart.
type PlaceOrderRequest struct {
	AddressID            string  `json:"addressId"`
	DeliveryInstructions *string `json:"deliveryInstructions,omitempty"`
}

// UpdateOrderStatusRequest represents the request payload for a status change.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
	Note   *string     `json:"note,omitempty"`
}
