package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cardvault-api/internal/config"
	"github.com/cardvault-api/internal/infrastructure/dynamo"
	s3infra "github.com/cardvault-api/internal/infrastructure/s3"
	"github.com/cardvault-api/internal/infrastructure/smtp"
	stripeinfra "github.com/cardvault-api/internal/infrastructure/stripe"
	"github.com/cardvault-api/internal/infrastructure/token"
	transporthttp "github.com/cardvault-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Every credential and link flow hangs off the signing secret; there is
	// no degraded mode without it.
	tokenProvider, err := token.NewProvider(cfg)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	// S3 store for card photos.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// Stripe payments.
	payments := stripeinfra.NewClient(cfg)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OrderRepo:        dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		StatusRepo:       dynamo.NewStatusRepo(dynamoClient, cfg.DynamoTables.Statuses),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		CardImageRepo:    dynamo.NewCardImageRepo(dynamoClient, cfg.DynamoTables.CardImages),
		S3Store:          s3Store,
		Mailer:           mailer,
		Payments:         payments,
		TokenProvider:    tokenProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
