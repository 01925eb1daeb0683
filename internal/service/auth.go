// Package service holds the business rules of the dashboard's stores.
//
//	Handler (HTTP) / bonvanctl (CLI) → Service (rules) → repository.KeyValueStore
//
// Every service owns its persisted slots exclusively. Read-modify-write
// sequences run under the service's mutex, so two concurrent calls never
// interleave their reads and writes of the same slot.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

const minPasswordLength = 6

// AuthService manages the users list and the single session slot.
//
// DEPENDENCIES (injected via NewAuthService):
//   - store      repository.KeyValueStore → users and session slots
//   - passwords  *auth.PasswordService    → hashing and verification
//   - logger     *slog.Logger             → structured logging
type AuthService struct {
	store     repository.KeyValueStore
	passwords *auth.PasswordService
	logger    *slog.Logger

	now   func() time.Time
	newID func() string

	// mu is held for the whole of SignUp, SignIn and Logout, hashing
	// included. Calls complete in the order they acquired it, so a slower,
	// older call can never overwrite the session of a newer one.
	mu sync.Mutex
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(store repository.KeyValueStore, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and signs it in.
//
// Errors: ErrValidation for an email without "@" or a password shorter than
// 6 characters, ErrConflict when the email is taken (case-insensitive),
// ErrStorage when the slots cannot be written.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*model.AuthSession, error) {
	clean := NormalizeEmail(email)
	if !strings.Contains(clean, "@") {
		return nil, apperror.ValidationFailed("email", "invalid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password too short (min %d characters)", minPasswordLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sign up: %w", err)
	}
	if findUser(users, clean) != nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrConflict,
			Message: "an account already exists with this email",
			Field:   "email",
		}
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	now := s.timestamp()
	user := model.AuthUser{
		ID:           s.newID(),
		Email:        clean,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	users = append(users, user)
	if err := repository.SaveJSON(ctx, s.store, repository.KeyUsers, users); err != nil {
		return nil, fmt.Errorf("service/auth: saving users: %w", err)
	}

	session := &model.AuthSession{UserID: user.ID, Email: user.Email, LoggedInAt: now}
	if err := repository.SaveJSON(ctx, s.store, repository.KeySession, session); err != nil {
		return nil, fmt.Errorf("service/auth: saving session: %w", err)
	}

	s.logger.Info("account created",
		slog.String("userID", user.ID),
		slog.String("scheme", string(s.passwords.Scheme())),
	)
	return session, nil
}

// SignIn opens a new session for an existing account, replacing any prior one.
//
// Errors: ErrNotFound when no account matches the email, ErrUnauthorized
// when the password is wrong. On either failure the prior session is left
// untouched. Transports that must not reveal which one occurred should map
// both to the same response.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.AuthSession, error) {
	clean := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sign in: %w", err)
	}
	user := findUser(users, clean)
	if user == nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "no account found with this email",
			Field:   "email",
		}
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash is unreadable", slog.String("userID", user.ID))
		}
		return nil, apperror.Unauthorized("wrong password")
	}

	session := &model.AuthSession{UserID: user.ID, Email: user.Email, LoggedInAt: s.timestamp()}
	if err := repository.SaveJSON(ctx, s.store, repository.KeySession, session); err != nil {
		return nil, fmt.Errorf("service/auth: saving session: %w", err)
	}

	s.logger.Info("signed in", slog.String("userID", user.ID))
	return session, nil
}

// LoadSession returns the persisted session, or nil when nobody is signed in
// or the slot is unreadable.
func (s *AuthService) LoadSession(ctx context.Context) (*model.AuthSession, error) {
	session, err := repository.LoadJSON[model.AuthSession](ctx, s.store, repository.KeySession)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading session: %w", err)
	}
	if session == nil || session.UserID == "" {
		return nil, nil
	}
	return session, nil
}

// Logout deletes the session slot. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repository.Remove(ctx, s.store, repository.KeySession); err != nil {
		return fmt.Errorf("service/auth: logout: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// ListUsers returns every account in creation order.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.AuthUser, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}
	return users, nil
}

func (s *AuthService) loadUsers(ctx context.Context) ([]model.AuthUser, error) {
	users, err := repository.LoadJSON[[]model.AuthUser](ctx, s.store, repository.KeyUsers)
	if err != nil {
		return nil, err
	}
	if users == nil {
		return []model.AuthUser{}, nil
	}
	return *users, nil
}

func (s *AuthService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// findUser matches case-insensitively, so records written before emails were
// normalized still collide.
func findUser(users []model.AuthUser, email string) *model.AuthUser {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i]
		}
	}
	return nil
}
