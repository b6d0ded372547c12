package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/cardvault-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to one flow. A token signed for one purpose never
// verifies under another, so a verification link can't be replayed as a
// session cookie.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposeEmailVerify   Purpose = "email-verify"
	PurposePasswordReset Purpose = "password-reset"
)

// Claims holds the signed token payload.
type Claims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 tokens with a process-wide secret.
// It keeps no state: validity is proven by signature and embedded expiry
// alone, with one TTL profile per purpose.
type Provider struct {
	secret []byte
	ttls   map[Purpose]time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.AuthSecret == "" {
		return nil, errors.New("AUTH_SECRET is not set")
	}
	return &Provider{
		secret: []byte(cfg.AuthSecret),
		ttls: map[Purpose]time.Duration{
			PurposeSession:       cfg.SessionTTL,
			PurposeEmailVerify:   cfg.VerifyTTL,
			PurposePasswordReset: cfg.ResetTTL,
		},
	}, nil
}

func (p *Provider) Sign(userID, role string, purpose Purpose) (string, error) {
	ttl, ok := p.ttls[purpose]
	if !ok {
		return "", fmt.Errorf("unknown token purpose %q", purpose)
	}
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Role:    role,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(tokenStr string, purpose Purpose) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Purpose != string(purpose) {
		return nil, errors.New("token purpose mismatch")
	}
	return claims, nil
}
