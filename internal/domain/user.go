package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a storefront account. A freshly registered user has no password
// hash; it is set only after the email has been verified. TokensInvalidAfter
// is a Unix timestamp: session tokens issued before it are rejected, which is
// how password changes revoke outstanding sessions without a session table.
type User struct {
	UserID             string    `json:"id" dynamodbav:"user_id"`
	Email              string    `json:"email" dynamodbav:"email"`
	PasswordHash       string    `json:"-" dynamodbav:"password_hash"`
	Role               string    `json:"role" dynamodbav:"role"`
	Verified           bool      `json:"isVerified" dynamodbav:"verified"`
	TokensInvalidAfter int64     `json:"-" dynamodbav:"tokens_invalid_after"`
	Enable             bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
