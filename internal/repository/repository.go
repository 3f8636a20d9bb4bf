package repository

import (
	"context"
	"time"

	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products newest first, optionally restricted to a category.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Search matches the query case-insensitively against name, description and brand.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	// Featured retrieves featured products newest first.
	Featured(ctx context.Context, limit int) ([]model.Product, error)

	// ByVendor retrieves a vendor's products newest first.
	ByVendor(ctx context.Context, vendorID string, limit int) ([]model.Product, error)

	// Upsert inserts a product or replaces the existing row with the same ID.
	Upsert(ctx context.Context, product *model.Product) error

	// DecrementStock lowers stock within the provided transaction, floored at zero.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetItems retrieves the user's cart lines, joined with current product data, oldest first.
	GetItems(ctx context.Context, userID string) ([]model.CartItem, error)

	// AddItem adds quantity to the line for productID, creating it when absent.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)

	// UpdateQuantity sets the quantity of a line. It returns model.ErrCartItemNotFound when
	// the line does not belong to the user.
	UpdateQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) error

	// RemoveItem deletes a line. It returns model.ErrCartItemNotFound when the line does not
	// belong to the user.
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) error

	// Clear deletes every line of the user's cart.
	Clear(ctx context.Context, userID string) error

	// ClearTx deletes every line of the user's cart within the provided transaction.
	ClearTx(ctx context.Context, tx pgx.Tx, userID string) error

	// ItemCount returns the sum of quantities in the user's cart.
	ItemCount(ctx context.Context, userID string) (int, error)
}

// AddressRepository defines the interface for delivery address data access.
// Every mutation keeps at most one default address per user.
type AddressRepository interface {
	// List retrieves the user's addresses newest first.
	List(ctx context.Context, userID string) ([]model.Address, error)

	// GetByID retrieves one of the user's addresses. It returns nil when absent.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error)

	// GetDefault retrieves the user's default address. It returns nil when there is none.
	GetDefault(ctx context.Context, userID string) (*model.Address, error)

	// Create inserts an address. The user's first address becomes the default.
	Create(ctx context.Context, address *model.Address) error

	// Update persists label, street, city, state and ZIP code changes.
	Update(ctx context.Context, address *model.Address) error

	// Delete removes an address, promoting the most recently created remaining
	// address when the default was removed.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// SetDefault makes the address the user's only default.
	SetDefault(ctx context.Context, userID string, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// AppendStatus records a status history entry within the provided transaction.
	AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, entry model.StatusEntry) error

	// SetStatus changes the current status within the provided transaction. It returns
	// model.ErrOrderNotFound when the order does not exist.
	SetStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error

	// GetByID retrieves an order with its items and status history. It returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves the user's orders newest first, with items and history.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a user. It returns model.ErrEmailTaken when the e-mail is registered.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user. It returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by case-insensitive e-mail. It returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateProfile persists name and phone.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error

	// UpdatePhotoURL persists the profile photo location.
	UpdatePhotoURL(ctx context.Context, id uuid.UUID, url string) error

	// TouchLastLogin records a successful sign-in.
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
