// Package auth holds the operator credential.
//
// There is a single operator role. Passwords are stored as bcrypt hashes;
// a row still holding a plaintext password (an older database) is accepted
// once and re-hashed on the spot.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoOperator is returned by a CredentialStore when the user doesn't exist.
	ErrNoOperator = errors.New("operator not found")
)

// Operator is a stored login. PasswordHash is a bcrypt hash, or plaintext
// for legacy rows.
type Operator struct {
	Username     string
	PasswordHash string
}

// CredentialStore persists operators.
type CredentialStore interface {
	GetOperator(ctx context.Context, username string) (Operator, error)
	CountOperators(ctx context.Context) (int, error)
	SaveOperator(ctx context.Context, op Operator) error
}

type Service struct {
	store CredentialStore
	cost  int
}

func NewService(store CredentialStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Bootstrap creates the operator when no operator exists yet. It reports
// whether a row was written.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	n, err := s.store.CountOperators(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.set(ctx, username, password); err != nil {
		return false, err
	}
	return true, nil
}

// Verify checks a username/password pair.
func (s *Service) Verify(ctx context.Context, username, password string) error {
	op, err := s.store.GetOperator(ctx, username)
	if errors.Is(err, ErrNoOperator) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	if isBcryptHash(op.PasswordHash) {
		if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
			return ErrInvalidCredentials
		}
		return nil
	}

	if op.PasswordHash == "" || op.PasswordHash != password {
		return ErrInvalidCredentials
	}
	// Legacy plaintext row: upgrade it now that the password is known.
	return s.set(ctx, username, password)
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if err := s.Verify(ctx, username, current); err != nil {
		return err
	}
	return s.set(ctx, username, next)
}

// Set writes a password without verifying the old one. Used by the CLI,
// which runs with direct database access.
func (s *Service) Set(ctx context.Context, username, password string) error {
	return s.set(ctx, username, password)
}

func (s *Service) set(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if password == "" {
		return fmt.Errorf("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.SaveOperator(ctx, Operator{Username: username, PasswordHash: string(hash)})
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
