package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/infrastructure/token"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Sign(userID, role string, purpose token.Purpose) (string, error) {
	args := m.Called(userID, role, purpose)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) Verify(tok string, purpose token.Purpose) (*token.Claims, error) {
	args := m.Called(tok, purpose)
	if c, _ := args.Get(0).(*token.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// allowAll never blocks; the limiter has its own tests.
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// --- builder ---

func newTestService(us *mockUserStore, tk *mockTokens, ml *mockMailer) Service {
	return NewService(ServiceDeps{
		UserRepo:    us,
		Tokens:      tk,
		Mailer:      ml,
		Limiter:     allowAll{},
		FrontendURL: "http://localhost:5173",
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func sessionClaims(userID string, issuedAt time.Time) *token.Claims {
	return &token.Claims{
		UserID:  userID,
		Purpose: string(token.PurposeSession),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
}

// --- Register ---

func TestRegister_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(us, nil, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_EmptyEmailAfterSanitize(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@x.com" && !u.Verified && u.PasswordHash == "" && u.Enable && u.Role == domain.RoleUser
	})).Return(nil)
	tk.On("Sign", mock.AnythingOfType("string"), "", token.PurposeEmailVerify).Return("verify-tok", nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "/verify-email/verify-tok")
	})).Return(nil)

	svc := newTestService(us, tk, ml)
	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "A@X.com "})

	require.NoError(t, err)
	us.AssertExpectations(t)
	tk.AssertExpectations(t)
	ml.AssertExpectations(t)
}

// --- VerifyEmail ---

func TestVerifyEmail_InvalidToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "bad", token.PurposeEmailVerify).Return(nil, errors.New("signature is invalid"))

	svc := newTestService(nil, tk, nil)
	_, err := svc.VerifyEmail(context.Background(), "bad")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerifyEmail_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposeEmailVerify).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Enable: true}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldVerified: true}).Return(nil)

	svc := newTestService(us, tk, nil)
	res, err := svc.VerifyEmail(context.Background(), "tok")

	require.NoError(t, err)
	assert.False(t, res.AlreadyVerified)
	assert.Contains(t, res.Redirect, "/set-password?token=tok")
	us.AssertExpectations(t)
}

func TestVerifyEmail_ReplayIsIdempotent(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposeEmailVerify).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Verified: true, Enable: true}, nil)

	svc := newTestService(us, tk, nil)
	res, err := svc.VerifyEmail(context.Background(), "tok")

	require.NoError(t, err)
	assert.True(t, res.AlreadyVerified)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- SetPassword ---

func TestSetPassword_BeforeVerification(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposeEmailVerify).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Verified: false}, nil)

	svc := newTestService(us, tk, nil)
	err := svc.SetPassword(context.Background(), "tok", "secret123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSetPassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposeEmailVerify).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Verified: true}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		hash, ok := m[fieldPasswordHash].(string)
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")) == nil
	})).Return(nil)

	svc := newTestService(us, tk, nil)
	err := svc.SetPassword(context.Background(), "tok", "secret123")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestSetPassword_ReplayAfterPasswordSet(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposeEmailVerify).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Verified: true, PasswordHash: hashOf(t, "secret123"),
	}, nil)

	svc := newTestService(us, tk, nil)
	err := svc.SetPassword(context.Background(), "tok", "attacker-pw")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_RateLimited(t *testing.T) {
	svc := NewService(ServiceDeps{Limiter: denyAll{}})
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"}, "1.2.3.4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTooManyRequests))
}

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@x.com", Password: "pw"}, "1.2.3.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_Unverified(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Enable: true, Verified: false, PasswordHash: hashOf(t, "secret123"),
	}, nil)

	svc := newTestService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "secret123"}, "1.2.3.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_Disabled(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Enable: false, Verified: true, PasswordHash: hashOf(t, "secret123"),
	}, nil)

	svc := newTestService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "secret123"}, "1.2.3.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Enable: true, Verified: true, PasswordHash: hashOf(t, "secret123"),
	}, nil)

	svc := newTestService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "wrong"}, "1.2.3.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	user := &domain.User{
		UserID: "u1", Email: "a@x.com", Role: domain.RoleUser,
		Enable: true, Verified: true, PasswordHash: hashOf(t, "secret123"),
	}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil)
	tk.On("Sign", "u1", domain.RoleUser, token.PurposeSession).Return("session-tok", nil)

	svc := newTestService(us, tk, nil)
	tok, got, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "secret123"}, "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, "session-tok", tok)
	assert.Equal(t, "u1", got.UserID)
	tk.AssertExpectations(t)
}

// --- CurrentUser ---

func TestCurrentUser_RevokedToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Enable: true,
		TokensInvalidAfter: time.Now().Unix(),
	}, nil)

	svc := newTestService(us, nil, nil)
	_, err := svc.CurrentUser(context.Background(), sessionClaims("u1", time.Now().Add(-time.Hour)))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestCurrentUser_Disabled(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Enable: false}, nil)

	svc := newTestService(us, nil, nil)
	_, err := svc.CurrentUser(context.Background(), sessionClaims("u1", time.Now()))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestCurrentUser_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Enable: true}, nil)

	svc := newTestService(us, nil, nil)
	u, err := svc.CurrentUser(context.Background(), sessionClaims("u1", time.Now()))

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}

// --- ChangePassword ---

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Enable: true, PasswordHash: hashOf(t, "secret123"),
	}, nil)

	svc := newTestService(us, nil, nil)
	err := svc.ChangePassword(context.Background(), sessionClaims("u1", time.Now()), "wrong", "newsecret")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestChangePassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Enable: true, PasswordHash: hashOf(t, "secret123"),
	}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		_, hasHash := m[fieldPasswordHash]
		_, hasRevoke := m[fieldTokensInvalidAfter]
		return hasHash && hasRevoke
	})).Return(nil)

	svc := newTestService(us, nil, nil)
	err := svc.ChangePassword(context.Background(), sessionClaims("u1", time.Now()), "secret123", "newsecret")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- RequestPasswordReset ---

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, nil, ml)
	err := svc.RequestPasswordReset(context.Background(), "nobody@x.com")

	require.NoError(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_UnverifiedIsSilent(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Enable: true, Verified: false,
	}, nil)

	svc := newTestService(us, nil, ml)
	err := svc.RequestPasswordReset(context.Background(), "a@x.com")

	require.NoError(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Email: "a@x.com", Enable: true, Verified: true,
	}, nil)
	tk.On("Sign", "u1", "", token.PurposePasswordReset).Return("reset-tok", nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "/reset-password/reset-tok")
	})).Return(nil)

	svc := newTestService(us, tk, ml)
	err := svc.RequestPasswordReset(context.Background(), "a@x.com")

	require.NoError(t, err)
	ml.AssertExpectations(t)
}

// --- ResetPassword ---

func TestResetPassword_InvalidToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "bad", token.PurposePasswordReset).Return(nil, errors.New("token is expired"))

	svc := newTestService(nil, tk, nil)
	err := svc.ResetPassword(context.Background(), "bad", "newsecret")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResetPassword_ReplayedTokenRejected(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	issued := time.Now().Add(-10 * time.Minute)
	tk.On("Verify", "tok", token.PurposePasswordReset).Return(&token.Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}, nil)
	// The first use of the token already bumped the revocation timestamp.
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Verified: true, Enable: true,
		TokensInvalidAfter: issued.Add(5 * time.Minute).Unix(),
	}, nil)

	svc := newTestService(us, tk, nil)
	err := svc.ResetPassword(context.Background(), "tok", "newsecret")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok", token.PurposePasswordReset).Return(&token.Claims{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Verified: true, Enable: true}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		_, hasHash := m[fieldPasswordHash]
		_, hasRevoke := m[fieldTokensInvalidAfter]
		return hasHash && hasRevoke
	})).Return(nil)

	svc := newTestService(us, tk, nil)
	err := svc.ResetPassword(context.Background(), "tok", "newsecret")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
