// Package auth implements the credential check, the in-memory session
// store and the role gate. Sessions are bearer tokens valid until logout
// or restart; there is no lockout or rate limiting.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"booklend/internal/model"
	"booklend/internal/repository"
)

// Service authenticates users and resolves session tokens.
type Service struct {
	users *repository.UserRepository

	mu       sync.RWMutex
	sessions map[string]string // token -> user id
}

// NewService constructs an auth Service.
func NewService(users *repository.UserRepository) *Service {
	return &Service{
		users:    users,
		sessions: make(map[string]string),
	}
}

// Authenticate checks the credentials and issues a session token. Unknown
// emails and wrong passwords both surface as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", model.ErrInvalidCredentials
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = user.ID
	s.mu.Unlock()

	user.PasswordHash = ""
	return user, token, nil
}

// Logout revokes a session token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UserForToken resolves a session token to its sanitized user, or
// model.ErrInvalidCredentials when the token is unknown.
func (s *Service) UserForToken(ctx context.Context, token string) (*model.User, error) {
	s.mu.RLock()
	userID, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// HasRole reports whether the user's role is in the given set.
// A nil user never has a role.
func HasRole(user *model.User, roles ...model.Role) bool {
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}
