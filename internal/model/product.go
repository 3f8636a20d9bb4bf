package model

import "time"

// Category is a product category in the catalogue.
type Category string

const (
	CategoryHair        Category = "Hair"
	CategoryNails       Category = "Nails"
	CategoryMakeup      Category = "Makeup"
	CategorySkincare    Category = "Skincare"
	CategoryTools       Category = "Tools"
	CategoryAccessories Category = "Accessories"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryHair,
		CategoryNails,
		CategoryMakeup,
		CategorySkincare,
		CategoryTools,
		CategoryAccessories,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a beauty product in the catalogue.
type Product struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	SalePrice     *float64  `json:"salePrice,omitempty" db:"sale_price"`
	ImageURLs     []string  `json:"imageUrls" db:"image_urls"`
	Category      Category  `json:"category" db:"category"`
	VendorID      string    `json:"vendorId" db:"vendor_id"`
	VendorName    string    `json:"vendorName" db:"vendor_name"`
	StockQuantity int       `json:"stockQuantity" db:"stock_quantity"`
	AverageRating float64   `json:"averageRating" db:"average_rating"`
	ReviewCount   int       `json:"reviewCount" db:"review_count"`
	Brand         *string   `json:"brand,omitempty" db:"brand"`
	SKU           *string   `json:"sku,omitempty" db:"sku"`
	IsFeatured    bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// PrimaryImage returns the first image URL or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Limit    int
	Offset   int
	Category *Category
}
