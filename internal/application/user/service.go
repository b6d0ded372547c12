package user

import (
	"context"
	"time"

	"github.com/cardvault-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEnable             = "enable"
	fieldTokensInvalidAfter = "tokens_invalid_after"
)

// Service is the back-office surface over accounts: listing customers and
// disabling abusive ones. Everything a customer does to their own account
// goes through the auth service instead.
type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Disable(ctx context.Context, userID string) error
}

type userStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// Disable flags the account off and revokes its outstanding session tokens in
// the same write.
func (s *service) Disable(ctx context.Context, userID string) error {
	return s.repo.Update(ctx, userID, map[string]interface{}{
		fieldEnable:             false,
		fieldTokensInvalidAfter: time.Now().Unix(),
	})
}
