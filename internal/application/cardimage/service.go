package cardimage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/pkg/id"
)

// UploadInput carries one card photo being attached to a grading submission.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	OrderID     *string
	UploaderID  string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.CardImage, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CardImage, error)
	Download(ctx context.Context, imageID, requesterID string, isAdmin bool) (io.ReadCloser, *domain.CardImage, error)
	Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error
}

type imageStore interface {
	Put(ctx context.Context, img *domain.CardImage) error
	Get(ctx context.Context, imageID string) (*domain.CardImage, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CardImage, error)
	SoftDelete(ctx context.Context, imageID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	objects objectStore
	repo    imageStore
}

func NewService(objects objectStore, repo imageStore) Service {
	return &service{objects: objects, repo: repo}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.CardImage, error) {
	safeName := sanitizeFilename(input.Filename)
	imageID := id.New()
	// Prefixing the key with the image id keeps two uploads of the same
	// filename from clobbering each other.
	key := fmt.Sprintf("cards/%s/%s-%s", input.UploaderID, imageID, safeName)
	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if _, err := s.objects.Upload(ctx, key, tee, input.ContentType); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	img := &domain.CardImage{
		ImageID:          imageID,
		Object:           key,
		Size:             input.Size,
		Type:             input.ContentType,
		Name:             safeName,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		OrderID:          input.OrderID,
		UploadedByUserID: input.UploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Put(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.CardImage, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Download(ctx context.Context, imageID, requesterID string, isAdmin bool) (io.ReadCloser, *domain.CardImage, error) {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if !img.Enable {
		return nil, nil, fmt.Errorf("card image not found: %w", domain.ErrNotFound)
	}
	if img.UploadedByUserID != requesterID && !isAdmin {
		return nil, nil, fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	rc, err := s.objects.Download(ctx, img.Object)
	if err != nil {
		return nil, nil, err
	}
	return rc, img, nil
}

func (s *service) Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if !img.Enable {
		return fmt.Errorf("card image not found: %w", domain.ErrNotFound)
	}
	if img.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, img.Object); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, imageID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
