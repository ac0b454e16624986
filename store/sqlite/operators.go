package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/tenancy-engine/auth"
)

var _ auth.CredentialStore = (*Store)(nil)

// =============================================================================
// OPERATORS (auth.CredentialStore)
// =============================================================================

func (s *Store) GetOperator(ctx context.Context, username string) (auth.Operator, error) {
	var op auth.Operator
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash FROM operators WHERE username = ?`, username,
	).Scan(&op.Username, &op.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Operator{}, auth.ErrNoOperator
	}
	if err != nil {
		return auth.Operator{}, fmt.Errorf("failed to load operator: %w", err)
	}
	return op, nil
}

func (s *Store) CountOperators(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&n)
	return n, err
}

// SaveOperator inserts or replaces the operator row.
func (s *Store) SaveOperator(ctx context.Context, op auth.Operator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operators (username, password_hash) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
		op.Username, op.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to save operator: %w", err)
	}
	return nil
}
