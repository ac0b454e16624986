/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements property.TxStore and auth.CredentialStore on SQLite through
  database/sql and mattn/go-sqlite3.

INTERFACES IMPLEMENTED:
  property.TxStore:      Units, tenants, archive, payments, maintenance, reports
  auth.CredentialStore:  Operator credentials

KEY TABLES:
  units:            Rentable spaces; status is written by units.Registry only
  tenants:          Live ledger
  deleted_tenants:  Soft-delete archive (original_id is historical)
  payments:         Append-only; total is stored for reporting, never read back
  maintenance:      Requests, optionally tied to a tenant and a staff member
  staff, reports, operators
  schema_migrations: Applied migration versions

APPEND-ONLY ENFORCEMENT:
  There is no UPDATE or DELETE statement on payments. Payments and
  maintenance rows carry a plain tenant_id with no foreign key, so they
  survive soft-delete.

IDENTIFIERS:
  Every table uses INTEGER PRIMARY KEY AUTOINCREMENT, so a deleted id is
  never handed out again. A restored tenant always gets a fresh id.

CONCURRENCY:
  One connection. SQLite admits a single writer anyway, and a ":memory:"
  database exists per connection. WithTx additionally holds a store-wide
  mutex so the Dorm capacity check-then-insert can't interleave.

USAGE:
  store, err := sqlite.New("./data/apartment.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := tenants.NewLedger(store, property.SystemClock{}, rules)

SEE ALSO:
  - migrations.go: Versioned schema
  - property/store.go: Interface definitions
  - property/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/tenancy-engine/property"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	queries
	db *sql.DB
	mu sync.Mutex
}

var (
	_ property.TxStore = (*Store)(nil)
	_ property.Store   = (*queries)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the same query code
// serves plain calls and calls inside WithTx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements property.Store on top of a querier.
type queries struct {
	q querier
}

// New creates a new SQLite store with the given database path and applies
// pending migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on"
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file::memory:") {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{q: db}, db: db}
	if _, err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store property.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d *property.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullInt64[T ~int64](id *T) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func scanDate(s string) (property.Date, error) {
	d, err := property.ParseDate(s)
	if err != nil {
		return property.Date{}, fmt.Errorf("corrupt date %q in database", s)
	}
	return d, nil
}

func scanNullDate(ns sql.NullString) (*property.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := scanDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func ptrFromNull[T ~int64](n sql.NullInt64) *T {
	if !n.Valid {
		return nil
	}
	v := T(n.Int64)
	return &v
}

// affectedOrNotFound turns a zero-row UPDATE/DELETE into a NotFoundError.
func affectedOrNotFound(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return property.NotFound(kind, id)
	}
	return nil
}
