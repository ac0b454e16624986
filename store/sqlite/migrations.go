package sqlite

import (
	"context"
	"fmt"
	"time"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order. Never edit an applied entry; append a new one.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_units_tenants",
		SQL: `
		CREATE TABLE IF NOT EXISTS units (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL CHECK (type IN ('Family', 'Solo', 'Dorm')),
			price TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'Vacant' CHECK (status IN ('Vacant', 'Occupied'))
		);

		CREATE TABLE IF NOT EXISTS tenants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			contact TEXT,
			unit_id INTEGER REFERENCES units(id),
			type TEXT NOT NULL,
			move_in TEXT,
			move_out TEXT,
			status TEXT NOT NULL DEFAULT 'Active',
			guardian_name TEXT,
			guardian_contact TEXT,
			guardian_relation TEXT,
			emergency_contact TEXT,
			advance_paid TEXT NOT NULL DEFAULT '0',
			deposit_paid TEXT NOT NULL DEFAULT '0'
		);

		-- Capacity checks and status refresh (hot path)
		CREATE INDEX IF NOT EXISTS idx_tenants_unit_status
			ON tenants(unit_id, status);

		CREATE TABLE IF NOT EXISTS deleted_tenants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			original_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			contact TEXT,
			unit_id INTEGER,
			type TEXT NOT NULL,
			move_in TEXT,
			move_out TEXT,
			status TEXT NOT NULL,
			guardian_name TEXT,
			guardian_contact TEXT,
			guardian_relation TEXT,
			emergency_contact TEXT,
			advance_paid TEXT NOT NULL DEFAULT '0',
			deposit_paid TEXT NOT NULL DEFAULT '0',
			deleted_date TEXT NOT NULL,
			reason TEXT
		);
		`,
	},
	{
		Version: 2,
		Name:    "create_payments",
		SQL: `
		CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id INTEGER NOT NULL,
			rent TEXT NOT NULL DEFAULT '0',
			electricity TEXT NOT NULL DEFAULT '0',
			water TEXT NOT NULL DEFAULT '0',
			total TEXT NOT NULL DEFAULT '0',
			date_paid TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('Paid', 'Overdue', 'Refund')),
			note TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_payments_tenant
			ON payments(tenant_id);
		CREATE INDEX IF NOT EXISTS idx_payments_date_paid
			ON payments(date_paid);
		`,
	},
	{
		Version: 3,
		Name:    "create_maintenance_staff",
		SQL: `
		CREATE TABLE IF NOT EXISTS staff (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			role TEXT,
			contact TEXT
		);

		CREATE TABLE IF NOT EXISTS maintenance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id INTEGER,
			description TEXT NOT NULL,
			priority TEXT NOT NULL CHECK (priority IN ('Low', 'Medium', 'High')),
			date_requested TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Ongoing', 'Done')),
			assigned_staff INTEGER REFERENCES staff(id),
			fee TEXT NOT NULL DEFAULT '0'
		);
		`,
	},
	{
		Version: 4,
		Name:    "create_reports_operators",
		SQL: `
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			generated_date TEXT NOT NULL,
			file_path TEXT
		);

		CREATE TABLE IF NOT EXISTS operators (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL
		);
		`,
	},
}

// Migrate applies pending migrations and returns the versions it applied.
// Each migration and its version row commit together.
func (s *Store) Migrate(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create version table: %w", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var ran []int
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return ran, err
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Name, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return ran, err
		}
		ran = append(ran, m.Version)
	}
	return ran, nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions[v] = true
	}
	return versions, rows.Err()
}
