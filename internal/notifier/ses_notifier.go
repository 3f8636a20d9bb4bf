package notifier

import (
	"context"
	"fmt"

	"glamgo/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

const charset = "UTF-8"

// sesAPI is the subset of the SES client used by sesNotifier.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// sesNotifier e-mails order confirmations through AWS SES.
type sesNotifier struct {
	client sesAPI
	sender string
	logger zerolog.Logger
}

// NewSESNotifier creates a notifier that sends e-mail from sender via SES.
func NewSESNotifier(ctx context.Context, region, sender string, logger zerolog.Logger) (Notifier, error) {
	logger = logger.With().Str("component", "ses-notifier").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().Str("region", region).Str("sender", sender).Msg("SES notifier initialised")
	return newSESNotifier(ses.NewFromConfig(cfg), sender, logger), nil
}

func newSESNotifier(client sesAPI, sender string, logger zerolog.Logger) *sesNotifier {
	return &sesNotifier{client: client, sender: sender, logger: logger}
}

// OrderPlaced sends the confirmation e-mail to the address on the order.
func (n *sesNotifier) OrderPlaced(ctx context.Context, order *model.Order) error {
	if order.UserEmail == "" {
		return fmt.Errorf("order %s has no recipient e-mail", order.OrderNumber)
	}

	msg := orderPlacedMessage(order)
	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{order.UserEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.html)},
				Text: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.text)},
			},
		},
	}

	out, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to send order confirmation")
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	n.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("message_id", aws.ToString(out.MessageId)).
		Msg("order confirmation sent")
	return nil
}
