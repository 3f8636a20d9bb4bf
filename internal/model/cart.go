package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxItemQuantity caps the quantity of a single cart line.
const MaxItemQuantity = 999

// CartItem is a single product line in a user's cart.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	Product   Product   `json:"product"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

// Cart is the ordered collection of a user's cart lines.
type Cart struct {
	UserID    string      `json:"userId"`
	Items     []CartItem  `json:"items"`
	Summary   CartSummary `json:"summary"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CartSummary holds values derived from the cart lines.
type CartSummary struct {
	Subtotal       float64 `json:"subtotal"`
	ItemCount      int     `json:"itemCount"`
	UniqueProducts int     `json:"uniqueProducts"`
}

// AddToCartRequest is the payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest is the payload for changing a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
