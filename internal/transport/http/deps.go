package http

import (
	"github.com/cardvault-api/internal/infrastructure/dynamo"
	s3infra "github.com/cardvault-api/internal/infrastructure/s3"
	"github.com/cardvault-api/internal/infrastructure/smtp"
	stripeinfra "github.com/cardvault-api/internal/infrastructure/stripe"
	"github.com/cardvault-api/internal/infrastructure/token"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	OrderRepo        *dynamo.OrderRepo
	StatusRepo       *dynamo.StatusRepo
	NotificationRepo *dynamo.NotificationRepo
	CardImageRepo    *dynamo.CardImageRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	Payments         *stripeinfra.Client
	TokenProvider    *token.Provider
}
