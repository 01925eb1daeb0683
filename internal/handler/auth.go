package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/validate"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
)

// AccountService is the part of service.AuthService the handlers use.
type AccountService interface {
	SignUp(ctx context.Context, email, password string) (*model.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*model.AuthSession, error)
	LoadSession(ctx context.Context) (*model.AuthSession, error)
	Logout(ctx context.Context) error
}

// CredentialsRequest is the body of sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse wraps the current session; Session is null when signed out.
type SessionResponse struct {
	Session *model.AuthSession `json:"session"`
}

// AuthHandler exposes sign-up, sign-in, logout and the current session.
//
// DEPENDENCY CHAIN:
//   - accounts AccountService      → users list and session slot
//   - tokens   *auth.TokenService  → signs the session cookie
type AuthHandler struct {
	accounts     AccountService
	tokens       *auth.TokenService
	secureCookie bool
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie marks the session cookie
// HTTPS-only and should be on everywhere but local development.
func NewAuthHandler(accounts AccountService, tokens *auth.TokenService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		tokens:       tokens,
		secureCookie: secureCookie,
		validate:     validate.New(),
		logger:       logger,
	}
}

// HandleSignUp creates an account and signs it in.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"email": "alice@example.com", "password": "secret1"}
// RESPONSE: 201 {"session": {...}} plus the session cookie
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req, err := h.credentials(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, err := h.accounts.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.setSessionCookie(w, session); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, SessionResponse{Session: session})
}

// HandleSignIn opens a session for an existing account.
//
// HTTP: POST /api/auth/signin
//
// An unknown email and a wrong password get the same 401 body, so the
// endpoint cannot be used to probe which emails have an account.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req, err := h.credentials(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrUnauthorized) {
			h.logger.Info("sign-in rejected", slog.String("reason", err.Error()))
			err = apperror.Unauthorized("invalid email or password")
		}
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.setSessionCookie(w, session); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, SessionResponse{Session: session})
}

// HandleLogout deletes the session slot and the cookie.
//
// HTTP: POST /api/auth/logout
//
// Deleting the slot invalidates every token issued for it, not only the one
// in this browser.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandleSession returns the session the request's cookie belongs to.
//
// HTTP: GET /api/auth/session
// RESPONSE: {"session": {...}} or {"session": null}
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Authenticate(r, h.tokens, h.accounts)
	if err != nil && errors.Is(err, apperror.ErrStorage) {
		writeError(w, r, h.logger, err)
		return
	}
	if err != nil || id == nil {
		writeJSON(w, r, http.StatusOK, SessionResponse{})
		return
	}

	session, err := h.accounts.LoadSession(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, SessionResponse{Session: session})
}

func (h *AuthHandler) credentials(r *http.Request) (CredentialsRequest, error) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	if err := validate.Struct(h.validate, req); err != nil {
		return req, err
	}
	return req, nil
}

// setSessionCookie issues a token for session and stores it in an HttpOnly
// cookie. HttpOnly keeps it away from page scripts; SameSite=Lax keeps it
// off cross-site POSTs.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.AuthSession) error {
	token, err := h.tokens.Generate(session.UserID, session.LoggedInAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
