// Package notifier tells customers about their orders.
package notifier

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"glamgo/internal/model"

	"github.com/rs/zerolog"
)

// Notifier sends order notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *model.Order) error
}

// logNotifier records notifications in the application log only.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{logger: logger.With().Str("component", "log-notifier").Logger()}
}

func (n *logNotifier) OrderPlaced(ctx context.Context, order *model.Order) error {
	n.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", order.UserID).
		Float64("total", order.Pricing.Total).
		Msg("order confirmation")
	return nil
}

type message struct {
	subject string
	text    string
	html    string
}

func formatAmount(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func orderPlacedMessage(order *model.Order) message {
	name := order.UserName
	if name == "" {
		name = "there"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThank you for shopping with GlamGo! Your order %s has been placed.\n\n", name, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&text, "  %d x %s  %s\n", item.Quantity, item.ProductName, formatAmount(item.Price))
	}
	fmt.Fprintf(&text, "\nSubtotal: %s\nDelivery: %s\nTax: %s\nTotal: %s\n\n",
		formatAmount(order.Pricing.Subtotal),
		formatAmount(order.Pricing.DeliveryFee),
		formatAmount(order.Pricing.Tax),
		formatAmount(order.Pricing.Total),
	)
	fmt.Fprintf(&text, "Delivering to %s, %s, %s %s.\n\nThe GlamGo Team\n",
		order.DeliveryAddress.Street, order.DeliveryAddress.City,
		order.DeliveryAddress.State, order.DeliveryAddress.ZipCode)

	var body strings.Builder
	fmt.Fprintf(&body, "<html><body><p>Hi %s,</p>", html.EscapeString(name))
	fmt.Fprintf(&body, "<p>Thank you for shopping with GlamGo! Your order <strong>%s</strong> has been placed.</p><ul>",
		html.EscapeString(order.OrderNumber))
	for _, item := range order.Items {
		fmt.Fprintf(&body, "<li>%d x %s %s</li>", item.Quantity, html.EscapeString(item.ProductName), formatAmount(item.Price))
	}
	fmt.Fprintf(&body, "</ul><p>Total: <strong>%s</strong></p><p>The GlamGo Team</p></body></html>",
		formatAmount(order.Pricing.Total))

	return message{
		subject: fmt.Sprintf("Your GlamGo order %s", order.OrderNumber),
		text:    text.String(),
		html:    body.String(),
	}
}
