// Package integration drives the full HTTP stack against a real PostgreSQL.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"glamgo/internal/auth"
	"glamgo/internal/database/dbtest"
	"glamgo/internal/handler"
	"glamgo/internal/metrics"
	"glamgo/internal/model"
	"glamgo/internal/notifier"
	"glamgo/internal/repository"
	"glamgo/internal/router"
	"glamgo/internal/service"
	"glamgo/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "integration-secret-0123456789abcdef"
	testPassword = "correct-horse"
)

// TestEnv is a running API backed by a migrated test database.
type TestEnv struct {
	DB       *dbtest.TestDB
	Server   *httptest.Server
	Products repository.ProductRepository
}

// SetupTestEnv starts PostgreSQL, wires every layer the way the API binary
// does and serves it over httptest.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db := dbtest.New(t)
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	cartRepo := repository.NewCartRepository(db.Pool, logger)
	addressRepo := repository.NewAddressRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	userRepo := repository.NewUserRepository(db.Pool, logger)

	m := metrics.New()
	uploads := t.TempDir()
	photos := storage.NewFileStore(uploads, "/uploads", logger)
	tokens := auth.NewTokenManager(testSecret, "glamgo-test", time.Hour)

	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, m, logger)
	addressService := service.NewAddressService(addressRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, addressRepo, productRepo, notifier.NewLogNotifier(logger), m, logger)
	authService := service.NewAuthService(userRepo, tokens, auth.NewPasswordHasher(bcrypt.MinCost), nil, photos, logger)

	handlers := router.Handlers{
		Health:  handler.NewHealthHandler(db.Pool, logger),
		Auth:    handler.NewAuthHandler(authService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Address: handler.NewAddressHandler(addressService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}
	mux := router.New(handlers, router.Options{
		Tokens:      tokens,
		Metrics:     m,
		UploadsDir:  uploads,
		UploadsPath: "/uploads",
	}, logger)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &TestEnv{
		DB:       db,
		Server:   server,
		Products: productRepo,
	}
}

// Reset empties every table.
func (e *TestEnv) Reset(t *testing.T) {
	t.Helper()
	e.DB.Truncate(t)
}

// SeedProducts upserts the given products.
func (e *TestEnv) SeedProducts(t *testing.T, products ...model.Product) {
	t.Helper()

	ctx := context.Background()
	for i := range products {
		require.NoError(t, e.Products.Upsert(ctx, &products[i]))
	}
}

// Product builds a catalogue entry for seeding.
func Product(id, name string, price float64, stock int, category model.Category) model.Product {
	now := time.Now().UTC()
	return model.Product{
		ID:            id,
		Name:          name,
		Description:   name + " description",
		Price:         price,
		ImageURLs:     []string{"https://img.example/" + id + ".jpg"},
		Category:      category,
		VendorID:      "vendor-glamgo-beauty",
		VendorName:    "GLAMGO Beauty",
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Register creates a customer account and returns its bearer token.
func (e *TestEnv) Register(t *testing.T, email string) string {
	t.Helper()

	var resp model.AuthResponse
	status := e.Do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Name:     "Dana Fox",
		Phone:    "(512) 555-0100",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

// RegisterStaff creates an account, assigns role directly in the database
// and signs in again so the token carries the new role.
func (e *TestEnv) RegisterStaff(t *testing.T, email string, role model.Role) string {
	t.Helper()

	e.Register(t, email)
	_, err := e.DB.Pool.Exec(context.Background(), `UPDATE users SET role = $1 WHERE email = $2`, string(role), email)
	require.NoError(t, err)

	var resp model.AuthResponse
	status := e.Do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email:    email,
		Password: testPassword,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, role, resp.User.Role)

	return resp.Token
}

// Do sends a JSON request and decodes the response into out when it is
// non-nil. It returns the status code.
func (e *TestEnv) Do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}
