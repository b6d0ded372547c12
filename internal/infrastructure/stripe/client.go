package stripe

import (
	"context"
	"fmt"

	"github.com/cardvault-api/internal/config"
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// Client creates payment intents through the Stripe API.
type Client struct{}

func NewClient(cfg *config.Config) *Client {
	stripego.Key = cfg.StripeSecretKey
	return &Client{}
}

// CreateIntent registers a payment of amount (smallest currency unit) and
// returns the client secret the front end needs to confirm it.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	pi, err := paymentintent.New(&stripego.PaymentIntentParams{
		Params:   stripego.Params{Context: ctx},
		Amount:   stripego.Int64(amount),
		Currency: stripego.String(currency),
	})
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
