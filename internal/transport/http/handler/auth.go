package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"github.com/cardvault-api/internal/application/auth"
	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/pkg/validate"
	"github.com/cardvault-api/internal/transport/http/middleware"
)

// Auth exposes the account lifecycle over HTTP. Login puts the session token
// in an http-only cookie; the token never appears in a response body.
type Auth struct {
	svc        auth.Service
	sessionTTL time.Duration
	secure     bool
}

func NewAuth(svc auth.Service, sessionTTL time.Duration, secure bool) *Auth {
	return &Auth{svc: svc, sessionTTL: sessionTTL, secure: secure}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent"})
}

func (h *Auth) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httpError(w, err)
		return
	}
	msg := "email verified"
	if res.AlreadyVerified {
		msg = "email already verified"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  msg,
		"redirect": res.Redirect,
	})
}

func (h *Auth) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.SetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SetPassword(r.Context(), req.Token, req.Password); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password set, you can now log in"})
}

// Login deliberately collapses every credential failure into one 400 body so
// the response does not reveal whether an email is registered. Only the rate
// limiter produces a different status.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	tok, user, err := h.svc.Login(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, domain.ErrTooManyRequests) {
			httpError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	h.setSessionCookie(w, tok, int(h.sessionTTL.Seconds()))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user,
	})
}

func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	u, err := h.svc.CurrentUser(r.Context(), claims)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; revocation happens only on password change or account disable.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req domain.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims, req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

// RequestPasswordReset always answers 200 with the same body, whether or not
// the address belongs to an account.
func (h *Auth) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the address is registered, a reset email has been sent"})
}

func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password reset, you can now log in"})
}

// CSRFToken mirrors the per-request token into a cookie the front end can
// read and echo back in the X-CSRF-Token header.
func (h *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) {
	tok := csrf.Token(r)
	http.SetCookie(w, &http.Cookie{
		Name:     "XSRF-TOKEN",
		Value:    tok,
		Path:     "/",
		Secure:   h.secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}

func (h *Auth) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
