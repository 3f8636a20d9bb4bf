package service

import (
	"context"

	"glamgo/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalog read operations.
type ProductService interface {
	// List retrieves products newest first with pagination and an optional category.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Search matches products by name, description or brand.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	// Featured retrieves featured products.
	Featured(ctx context.Context, limit int) ([]model.Product, error)

	// ByVendor retrieves a vendor's products.
	ByVendor(ctx context.Context, vendorID string, limit int) ([]model.Product, error)

	// Categories lists the known product categories.
	Categories() []model.Category
}

// CartService defines operations on a user's cart.
type CartService interface {
	// GetCart retrieves the cart with current product data and its summary.
	GetCart(ctx context.Context, userID string) (*model.Cart, error)

	// AddItem adds quantity of a product, merging with an existing line.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)

	// UpdateItemQuantity sets the quantity of a line.
	UpdateItemQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*model.Cart, error)

	// RemoveItem deletes a line.
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID string) error

	// ItemCount returns the total quantity in the cart.
	ItemCount(ctx context.Context, userID string) (int, error)
}

// AddressService defines delivery address management.
type AddressService interface {
	List(ctx context.Context, userID string) ([]model.Address, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error)
	GetDefault(ctx context.Context, userID string) (*model.Address, error)

	// Add validates and stores a new address. The first address becomes the default.
	Add(ctx context.Context, userID string, form *model.AddressForm) (*model.Address, error)

	// Update applies the non-nil fields of update.
	Update(ctx context.Context, userID string, id uuid.UUID, update *model.AddressUpdate) (*model.Address, error)

	Delete(ctx context.Context, userID string, id uuid.UUID) error
	SetDefault(ctx context.Context, userID string, id uuid.UUID) error
}

// OrderService defines order placement and order queries.
type OrderService interface {
	// PlaceOrder turns the caller's cart into an order delivered to the chosen address.
	PlaceOrder(ctx context.Context, identity model.Identity, req *model.PlaceOrderRequest) (*model.Order, error)

	// GetOrder retrieves one of the user's orders.
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error)

	// ListOrders retrieves the user's orders newest first.
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)

	// UpdateStatus moves an order to a new status and records it in the history.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error)
}

// AuthService defines account and profile operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	GoogleSignIn(ctx context.Context, idToken string) (*model.AuthResponse, error)

	// Me retrieves the caller's account.
	Me(ctx context.Context, userID string) (*model.User, error)

	UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error)

	// UploadProfilePhoto stores an image and records its URL on the account.
	UploadProfilePhoto(ctx context.Context, userID, contentType string, body []byte) (*model.User, error)
}
