package payment

import (
	"context"
	"fmt"

	"github.com/cardvault-api/internal/domain"
)

// Grading fees are charged in euros.
const currency = "eur"

type Service interface {
	CreateIntent(ctx context.Context, amount int64) (clientSecret string, err error)
}

type intentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type service struct {
	payments intentCreator
}

func NewService(payments intentCreator) Service {
	return &service{payments: payments}
}

// CreateIntent validates the amount (smallest currency unit, must be positive)
// and asks the payment provider for a client secret.
func (s *service) CreateIntent(ctx context.Context, amount int64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("invalid amount: %w", domain.ErrBadRequest)
	}
	return s.payments.CreateIntent(ctx, amount, currency)
}
