package router

import (
	"net/http"
	"strings"

	"glamgo/internal/handler"
	"glamgo/internal/metrics"
	"glamgo/internal/middleware"
	"glamgo/internal/model"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Address *handler.AddressHandler
	Order   *handler.OrderHandler
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	// Tokens validates bearer tokens on protected routes.
	Tokens middleware.TokenParser

	// Metrics enables request instrumentation and GET /metrics when non-nil.
	Metrics *metrics.Metrics

	// UploadsDir is served read-only under UploadsPath when both are set.
	UploadsDir  string
	UploadsPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	authenticated := middleware.Auth(opts.Tokens, logger)
	protect := func(fn http.HandlerFunc) http.Handler {
		return authenticated(fn)
	}
	staff := func(fn http.HandlerFunc) http.Handler {
		return middleware.Chain(fn,
			authenticated,
			middleware.RequireRole(logger, model.RoleVendor, model.RoleDriver, model.RoleAdmin),
		)
	}

	// Health check and metrics (no authentication required)
	mux.HandleFunc("GET /health", h.Health.Check)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/google", h.Auth.Google)

	// Profile
	mux.Handle("GET /api/me", protect(h.Auth.Me))
	mux.Handle("PATCH /api/me", protect(h.Auth.UpdateProfile))
	mux.Handle("POST /api/me/photo", protect(h.Auth.UploadPhoto))

	// Catalogue
	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/search", h.Product.Search)
	mux.HandleFunc("GET /api/products/featured", h.Product.Featured)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/categories", h.Product.Categories)
	mux.HandleFunc("GET /api/vendors/{id}/products", h.Product.ByVendor)

	// Cart
	mux.Handle("GET /api/cart", protect(h.Cart.Get))
	mux.Handle("DELETE /api/cart", protect(h.Cart.Clear))
	mux.Handle("GET /api/cart/count", protect(h.Cart.Count))
	mux.Handle("POST /api/cart/items", protect(h.Cart.AddItem))
	mux.Handle("PATCH /api/cart/items/{id}", protect(h.Cart.UpdateItem))
	mux.Handle("DELETE /api/cart/items/{id}", protect(h.Cart.RemoveItem))

	// Addresses
	mux.Handle("GET /api/addresses", protect(h.Address.List))
	mux.Handle("POST /api/addresses", protect(h.Address.Create))
	mux.Handle("GET /api/addresses/default", protect(h.Address.GetDefault))
	mux.Handle("GET /api/addresses/{id}", protect(h.Address.Get))
	mux.Handle("PATCH /api/addresses/{id}", protect(h.Address.Update))
	mux.Handle("DELETE /api/addresses/{id}", protect(h.Address.Delete))
	mux.Handle("POST /api/addresses/{id}/default", protect(h.Address.SetDefault))

	// Orders
	mux.Handle("GET /api/orders", protect(h.Order.List))
	mux.Handle("POST /api/orders", protect(h.Order.Place))
	mux.Handle("GET /api/orders/{id}", protect(h.Order.GetByID))
	mux.Handle("PATCH /api/orders/{id}/status", staff(h.Order.UpdateStatus))

	// Locally stored uploads
	if opts.UploadsDir != "" && strings.HasPrefix(opts.UploadsPath, "/") {
		prefix := strings.TrimSuffix(opts.UploadsPath, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadsDir))))
	}

	// Apply middleware in order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		opts.Metrics.InstrumentHandler,
		middleware.CORS,
	)
}
