package repository

import (
	"context"
	"testing"
	"time"

	"glamgo/internal/database/dbtest"
	"glamgo/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// setupTestDB starts a migrated PostgreSQL container for the test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return dbtest.New(t).Pool
}

func testProduct(id, name string, price float64, stock int, category model.Category, createdAt time.Time) model.Product {
	return model.Product{
		ID:            id,
		Name:          name,
		Description:   name + " description",
		Price:         price,
		ImageURLs:     []string{"https://cdn.glamgo.example/" + id + ".jpg"},
		Category:      category,
		VendorID:      "V001",
		VendorName:    "Glow Studio",
		StockQuantity: stock,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

// seedProducts inserts test product data into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	t.Helper()

	repo := NewProductRepository(pool, zerolog.Nop())
	for i := range products {
		require.NoError(t, repo.Upsert(context.Background(), &products[i]))
	}
}
