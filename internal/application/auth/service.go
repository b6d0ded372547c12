package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/infrastructure/token"
	"github.com/cardvault-api/internal/pkg/id"
	"github.com/cardvault-api/internal/pkg/sanitize"
	"golang.org/x/crypto/bcrypt"
)

// VerifyResult is the outcome of an email-verification attempt. Redirect
// points the front end at the set-password step, which reuses the same token.
type VerifyResult struct {
	AlreadyVerified bool
	Redirect        string
}

// Service drives the account lifecycle: register, verify email, set password,
// login, session identity, change password and the email reset flow.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	VerifyEmail(ctx context.Context, tok string) (*VerifyResult, error)
	SetPassword(ctx context.Context, tok, password string) error
	Login(ctx context.Context, req domain.LoginRequest, clientKey string) (sessionToken string, user *domain.User, err error)
	CurrentUser(ctx context.Context, claims *token.Claims) (*domain.User, error)
	ChangePassword(ctx context.Context, claims *token.Claims, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, tok, newPassword string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenProvider interface {
	Sign(userID, role string, purpose token.Purpose) (string, error)
	Verify(tok string, purpose token.Purpose) (*token.Claims, error)
}

type attemptLimiter interface {
	Allow(key string) bool
}

type service struct {
	userRepo    userStore
	tokens      tokenProvider
	mailer      mailer
	limiter     attemptLimiter
	frontendURL string
}

type ServiceDeps struct {
	UserRepo    userStore
	Tokens      tokenProvider
	Mailer      mailer
	Limiter     attemptLimiter
	FrontendURL string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:    deps.UserRepo,
		tokens:      deps.Tokens,
		mailer:      deps.Mailer,
		limiter:     deps.Limiter,
		frontendURL: deps.FrontendURL,
	}
}

// DynamoDB attribute names used in partial update maps.
const (
	fieldVerified           = "verified"
	fieldPasswordHash       = "password_hash"
	fieldTokensInvalidAfter = "tokens_invalid_after"
)

// Register creates an unverified account with no password and emails a
// verification link. The password is set only after the link is followed.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	email := sanitize.Email(req.Email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Email:     email,
		Role:      domain.RoleUser,
		Verified:  false,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return err
	}
	tok, err := s.tokens.Sign(u.UserID, "", token.PurposeEmailVerify)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, tok)
	return s.mailer.SendEmail(u.Email, "Verify your CardVault account",
		"Welcome to CardVault. Confirm your email address to activate your account:\r\n\r\n"+link)
}

// VerifyEmail flips the account to verified. Replaying an already-used link
// is a no-op reported as AlreadyVerified rather than an error.
func (s *service) VerifyEmail(ctx context.Context, tok string) (*VerifyResult, error) {
	claims, err := s.tokens.Verify(tok, token.PurposeEmailVerify)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	redirect := fmt.Sprintf("%s/set-password?token=%s", s.frontendURL, tok)
	if u.Verified {
		return &VerifyResult{AlreadyVerified: true, Redirect: redirect}, nil
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{fieldVerified: true}); err != nil {
		return nil, err
	}
	return &VerifyResult{Redirect: redirect}, nil
}

// SetPassword stores the first password. The caller presents the same token
// the verification link carried; verification must have happened first. Once
// a password exists the link is spent: replaying it cannot overwrite the
// account's credentials.
func (s *service) SetPassword(ctx context.Context, tok, password string) error {
	claims, err := s.tokens.Verify(tok, token.PurposeEmailVerify)
	if err != nil {
		return fmt.Errorf("invalid or expired token: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if !u.Verified {
		return fmt.Errorf("account not verified: %w", domain.ErrBadRequest)
	}
	if u.PasswordHash != "" {
		return fmt.Errorf("account already active: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// Login checks the attempt limiter before touching credentials, then verifies
// the password. Unknown email, unverified account and wrong password all
// produce the same error so the response never reveals which accounts exist.
func (s *service) Login(ctx context.Context, req domain.LoginRequest, clientKey string) (string, *domain.User, error) {
	if !s.limiter.Allow(clientKey) {
		return "", nil, fmt.Errorf("too many login attempts, try again later: %w", domain.ErrTooManyRequests)
	}
	email := sanitize.Email(req.Email)
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Burn a bcrypt compare so the miss costs the same as a mismatch.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(req.Password))
		return "", nil, invalidCredentials()
	}
	if !u.Enable || !u.Verified || u.PasswordHash == "" {
		return "", nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, invalidCredentials()
	}
	tok, err := s.tokens.Sign(u.UserID, u.Role, token.PurposeSession)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// CurrentUser resolves the session claims to a live account, rejecting tokens
// issued before the account's revocation timestamp.
func (s *service) CurrentUser(ctx context.Context, claims *token.Claims) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Unix() < u.TokensInvalidAfter {
		return nil, fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

// ChangePassword rehashes after checking the current password, then bumps the
// revocation timestamp so every outstanding session token dies with the old
// password.
func (s *service) ChangePassword(ctx context.Context, claims *token.Claims, currentPassword, newPassword string) error {
	u, err := s.CurrentUser(ctx, claims)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{
		fieldPasswordHash:       string(hash),
		fieldTokensInvalidAfter: time.Now().Unix(),
	})
}

// RequestPasswordReset emails a short-lived reset link. The response is the
// same whether or not the address is registered.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = sanitize.Email(email)
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if !u.Verified || !u.Enable {
		return nil
	}
	tok, err := s.tokens.Sign(u.UserID, "", token.PurposePasswordReset)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, tok)
	if err := s.mailer.SendEmail(u.Email, "Reset your CardVault password",
		"A password reset was requested for your account. The link expires shortly:\r\n\r\n"+link); err != nil {
		slog.Warn("failed to send reset email", "user_id", u.UserID, "err", err)
		return err
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new hash, revoking all
// sessions issued before now. Because the first use bumps the revocation
// timestamp past the token's issuance time, a replayed reset link fails the
// IssuedAt check and the token is single use.
func (s *service) ResetPassword(ctx context.Context, tok, newPassword string) error {
	claims, err := s.tokens.Verify(tok, token.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("invalid or expired token: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if !u.Verified {
		return fmt.Errorf("account not verified: %w", domain.ErrBadRequest)
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Unix() < u.TokensInvalidAfter {
		return fmt.Errorf("invalid or expired token: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{
		fieldPasswordHash:       string(hash),
		fieldTokensInvalidAfter: time.Now().Unix(),
	})
}

func invalidCredentials() error {
	return fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
}
