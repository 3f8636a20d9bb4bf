// Package pricing computes order price breakdowns.
//
// All arithmetic happens in decimal so a breakdown depends only on the
// multiset of lines, never on the order they are summed in. Every output is
// rounded to cents, half-up.
package pricing

import (
	"fmt"

	"glamgo/internal/model"

	"github.com/shopspring/decimal"
)

const centPlaces = 2

var (
	// DeliveryFee is the flat fee charged on every order.
	DeliveryFee = decimal.RequireFromString("5.00")

	// TaxRate is applied to the rounded subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// Line is a unit price and quantity pair.
type Line struct {
	Price    float64
	Quantity int
}

// LinesFromCart converts cart items into pricing lines using current product prices.
func LinesFromCart(items []model.CartItem) []Line {
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{Price: item.Product.Price, Quantity: item.Quantity}
	}
	return lines
}

// Subtotal returns Σ price × quantity rounded to cents.
func Subtotal(lines []Line) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i, line := range lines {
		if line.Price < 0 {
			return decimal.Zero, model.NewValidationError(fmt.Sprintf("line %d: price must not be negative", i))
		}
		if line.Quantity < 1 {
			return decimal.Zero, model.ErrInvalidQuantity
		}
		price := decimal.NewFromFloat(line.Price)
		sum = sum.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return round2(sum), nil
}

// Calculate derives the price breakdown for an order.
func Calculate(lines []Line) (model.OrderPricing, error) {
	subtotal, err := Subtotal(lines)
	if err != nil {
		return model.OrderPricing{}, err
	}

	fee := round2(DeliveryFee)
	tax := round2(subtotal.Mul(TaxRate))
	total := round2(subtotal.Add(fee).Add(tax))

	return model.OrderPricing{
		Subtotal:    subtotal.InexactFloat64(),
		DeliveryFee: fee.InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		Total:       total.InexactFloat64(),
	}, nil
}

// Summarize computes the cart summary shown next to the cart lines.
// Lines with invalid data are skipped from the subtotal.
func Summarize(items []model.CartItem) model.CartSummary {
	summary := model.CartSummary{UniqueProducts: len(items)}

	sum := decimal.Zero
	for _, item := range items {
		summary.ItemCount += item.Quantity
		if item.Quantity < 1 || item.Product.Price < 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	summary.Subtotal = round2(sum).InexactFloat64()

	return summary
}

// round2 rounds half away from zero, which is half-up for the non-negative
// amounts handled here.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}
