package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/tenancy-engine/property"
)

// =============================================================================
// UNITS
// =============================================================================

func (q *queries) InsertUnit(ctx context.Context, u property.Unit) (property.UnitID, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO units (code, type, price, status) VALUES (?, ?, ?, ?)`,
		u.Code, string(u.Type), u.Price.String(), string(u.Status))
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, property.Invalid("code", fmt.Sprintf("unit code %q already exists", u.Code))
		}
		return 0, fmt.Errorf("failed to insert unit: %w", err)
	}
	id, err := res.LastInsertId()
	return property.UnitID(id), err
}

func (q *queries) GetUnit(ctx context.Context, id property.UnitID) (property.Unit, error) {
	row := q.q.QueryRowContext(ctx, `SELECT id, code, type, price, status FROM units WHERE id = ?`, int64(id))
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.Unit{}, property.NotFound("unit", int64(id))
	}
	return u, err
}

func (q *queries) ListUnits(ctx context.Context) ([]property.Unit, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, code, type, price, status FROM units ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (q *queries) SetUnitStatus(ctx context.Context, id property.UnitID, status property.UnitStatus) error {
	res, err := q.q.ExecContext(ctx, `UPDATE units SET status = ? WHERE id = ?`, string(status), int64(id))
	if err != nil {
		return fmt.Errorf("failed to set unit status: %w", err)
	}
	return affectedOrNotFound(res, "unit", int64(id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUnit(row scanner) (property.Unit, error) {
	var (
		u              property.Unit
		id             int64
		unitType, stat string
	)
	if err := row.Scan(&id, &u.Code, &unitType, &u.Price, &stat); err != nil {
		return property.Unit{}, err
	}
	u.ID = property.UnitID(id)
	u.Type = property.UnitType(unitType)
	u.Status = property.UnitStatus(stat)
	return u, nil
}

// =============================================================================
// TENANTS
// =============================================================================

const tenantColumns = `name, contact, unit_id, type, move_in, move_out, status,
	guardian_name, guardian_contact, guardian_relation, emergency_contact,
	advance_paid, deposit_paid`

func tenantArgs(t property.Tenant) []any {
	return []any{
		t.Name, nullString(t.Contact), nullInt64(t.UnitID), string(t.Type),
		nullDate(t.MoveIn), nullDate(t.MoveOut), string(t.Status),
		nullString(t.GuardianName), nullString(t.GuardianContact),
		nullString(t.GuardianRelation), nullString(t.EmergencyContact),
		t.AdvancePaid.String(), t.DepositPaid.String(),
	}
}

func (q *queries) InsertTenant(ctx context.Context, t property.Tenant) (property.TenantID, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenantArgs(t)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tenant: %w", err)
	}
	id, err := res.LastInsertId()
	return property.TenantID(id), err
}

func (q *queries) GetTenant(ctx context.Context, id property.TenantID) (property.Tenant, error) {
	row := q.q.QueryRowContext(ctx, `SELECT id, `+tenantColumns+` FROM tenants WHERE id = ?`, int64(id))
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.Tenant{}, property.NotFound("tenant", int64(id))
	}
	return t, err
}

func (q *queries) ListTenants(ctx context.Context) ([]property.Tenant, error) {
	return q.queryTenants(ctx, `SELECT id, `+tenantColumns+` FROM tenants ORDER BY id`)
}

func (q *queries) ListTenantsByUnit(ctx context.Context, unitID property.UnitID) ([]property.Tenant, error) {
	return q.queryTenants(ctx, `SELECT id, `+tenantColumns+` FROM tenants WHERE unit_id = ? ORDER BY id`, int64(unitID))
}

func (q *queries) queryTenants(ctx context.Context, query string, args ...any) ([]property.Tenant, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *queries) UpdateTenant(ctx context.Context, t property.Tenant) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE tenants SET
			name = ?, contact = ?, unit_id = ?, type = ?, move_in = ?, move_out = ?, status = ?,
			guardian_name = ?, guardian_contact = ?, guardian_relation = ?, emergency_contact = ?,
			advance_paid = ?, deposit_paid = ?
		WHERE id = ?`,
		append(tenantArgs(t), int64(t.ID))...)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return affectedOrNotFound(res, "tenant", int64(t.ID))
}

func (q *queries) DeleteTenant(ctx context.Context, id property.TenantID) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return affectedOrNotFound(res, "tenant", int64(id))
}

// tenantFields are the scan targets shared by tenants and deleted_tenants.
type tenantFields struct {
	contact, moveIn, moveOut                   sql.NullString
	guardianName, guardianContact, guardianRel sql.NullString
	emergency                                  sql.NullString
	unitID                                     sql.NullInt64
	unitType, status                           string
}

func (f *tenantFields) targets(t *property.Tenant) []any {
	return []any{
		&t.Name, &f.contact, &f.unitID, &f.unitType, &f.moveIn, &f.moveOut, &f.status,
		&f.guardianName, &f.guardianContact, &f.guardianRel, &f.emergency,
		&t.AdvancePaid, &t.DepositPaid,
	}
}

func (f *tenantFields) apply(t *property.Tenant) error {
	var err error
	t.Contact = f.contact.String
	t.UnitID = ptrFromNull[property.UnitID](f.unitID)
	t.Type = property.UnitType(f.unitType)
	t.Status = property.TenantStatus(f.status)
	t.GuardianName = f.guardianName.String
	t.GuardianContact = f.guardianContact.String
	t.GuardianRelation = f.guardianRel.String
	t.EmergencyContact = f.emergency.String
	if t.MoveIn, err = scanNullDate(f.moveIn); err != nil {
		return err
	}
	if t.MoveOut, err = scanNullDate(f.moveOut); err != nil {
		return err
	}
	return nil
}

func scanTenant(row scanner) (property.Tenant, error) {
	var (
		t  property.Tenant
		f  tenantFields
		id int64
	)
	if err := row.Scan(append([]any{&id}, f.targets(&t)...)...); err != nil {
		return property.Tenant{}, err
	}
	t.ID = property.TenantID(id)
	if err := f.apply(&t); err != nil {
		return property.Tenant{}, err
	}
	return t, nil
}

// =============================================================================
// ARCHIVE
// =============================================================================

const deletedColumns = `original_id, ` + tenantColumns + `, deleted_date, reason`

func (q *queries) InsertDeleted(ctx context.Context, d property.DeletedTenant) (property.DeletedID, error) {
	args := append([]any{int64(d.Tenant.ID)}, tenantArgs(d.Tenant)...)
	args = append(args, d.DeletedDate.String(), nullString(d.Reason))
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO deleted_tenants (`+deletedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to archive tenant: %w", err)
	}
	id, err := res.LastInsertId()
	return property.DeletedID(id), err
}

func (q *queries) GetDeleted(ctx context.Context, id property.DeletedID) (property.DeletedTenant, error) {
	row := q.q.QueryRowContext(ctx, `SELECT id, `+deletedColumns+` FROM deleted_tenants WHERE id = ?`, int64(id))
	d, err := scanDeleted(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.DeletedTenant{}, property.NotFound("deleted tenant", int64(id))
	}
	return d, err
}

func (q *queries) ListDeleted(ctx context.Context) ([]property.DeletedTenant, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, `+deletedColumns+` FROM deleted_tenants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.DeletedTenant
	for rows.Next() {
		d, err := scanDeleted(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *queries) RemoveDeleted(ctx context.Context, id property.DeletedID) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM deleted_tenants WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to remove archived tenant: %w", err)
	}
	return affectedOrNotFound(res, "deleted tenant", int64(id))
}

func scanDeleted(row scanner) (property.DeletedTenant, error) {
	var (
		d              property.DeletedTenant
		f              tenantFields
		id, originalID int64
		deletedDate    string
		reason         sql.NullString
	)
	dest := append([]any{&id, &originalID}, f.targets(&d.Tenant)...)
	dest = append(dest, &deletedDate, &reason)
	if err := row.Scan(dest...); err != nil {
		return property.DeletedTenant{}, err
	}
	if err := f.apply(&d.Tenant); err != nil {
		return property.DeletedTenant{}, err
	}
	date, err := scanDate(deletedDate)
	if err != nil {
		return property.DeletedTenant{}, err
	}
	d.ID = property.DeletedID(id)
	d.Tenant.ID = property.TenantID(originalID)
	d.DeletedDate = date
	d.Reason = reason.String
	return d, nil
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

func (q *queries) InsertPayment(ctx context.Context, p property.Payment) (property.PaymentID, error) {
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO payments (tenant_id, rent, electricity, water, total, date_paid, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(p.TenantID), p.Rent.String(), p.Electricity.String(), p.Water.String(),
		p.Total().String(), p.DatePaid.String(), string(p.Status), nullString(p.Note))
	if err != nil {
		return 0, fmt.Errorf("failed to insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	return property.PaymentID(id), err
}

const paymentColumns = `id, tenant_id, rent, electricity, water, date_paid, status, note`

func (q *queries) ListPayments(ctx context.Context) ([]property.Payment, error) {
	return q.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id`)
}

func (q *queries) ListPaymentsByTenant(ctx context.Context, tenantID property.TenantID) ([]property.Payment, error) {
	return q.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ? ORDER BY id`, int64(tenantID))
}

func (q *queries) queryPayments(ctx context.Context, query string, args ...any) ([]property.Payment, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.Payment
	for rows.Next() {
		var (
			p                property.Payment
			id, tenantID     int64
			datePaid, status string
			note             sql.NullString
		)
		if err := rows.Scan(&id, &tenantID, &p.Rent, &p.Electricity, &p.Water, &datePaid, &status, &note); err != nil {
			return nil, err
		}
		date, err := scanDate(datePaid)
		if err != nil {
			return nil, err
		}
		p.ID = property.PaymentID(id)
		p.TenantID = property.TenantID(tenantID)
		p.DatePaid = date
		p.Status = property.PaymentStatus(status)
		p.Note = note.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// MAINTENANCE & STAFF
// =============================================================================

const requestColumns = `id, tenant_id, description, priority, date_requested, status, assigned_staff, fee`

func (q *queries) InsertRequest(ctx context.Context, r property.MaintenanceRequest) (property.RequestID, error) {
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO maintenance (tenant_id, description, priority, date_requested, status, assigned_staff, fee)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(r.TenantID), r.Description, string(r.Priority), r.DateRequested.String(),
		string(r.Status), nullInt64(r.AssignedStaff), r.Fee.String())
	if err != nil {
		return 0, fmt.Errorf("failed to insert maintenance request: %w", err)
	}
	id, err := res.LastInsertId()
	return property.RequestID(id), err
}

func (q *queries) GetRequest(ctx context.Context, id property.RequestID) (property.MaintenanceRequest, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM maintenance WHERE id = ?`, int64(id))
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.MaintenanceRequest{}, property.NotFound("maintenance request", int64(id))
	}
	return r, err
}

func (q *queries) ListRequests(ctx context.Context) ([]property.MaintenanceRequest, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+requestColumns+` FROM maintenance ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.MaintenanceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) UpdateRequest(ctx context.Context, r property.MaintenanceRequest) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE maintenance SET
			tenant_id = ?, description = ?, priority = ?, date_requested = ?,
			status = ?, assigned_staff = ?, fee = ?
		WHERE id = ?`,
		nullInt64(r.TenantID), r.Description, string(r.Priority), r.DateRequested.String(),
		string(r.Status), nullInt64(r.AssignedStaff), r.Fee.String(), int64(r.ID))
	if err != nil {
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}
	return affectedOrNotFound(res, "maintenance request", int64(r.ID))
}

func scanRequest(row scanner) (property.MaintenanceRequest, error) {
	var (
		r                 property.MaintenanceRequest
		id                int64
		tenantID, staffID sql.NullInt64
		priority, status  string
		dateRequested     string
	)
	if err := row.Scan(&id, &tenantID, &r.Description, &priority, &dateRequested, &status, &staffID, &r.Fee); err != nil {
		return property.MaintenanceRequest{}, err
	}
	date, err := scanDate(dateRequested)
	if err != nil {
		return property.MaintenanceRequest{}, err
	}
	r.ID = property.RequestID(id)
	r.TenantID = ptrFromNull[property.TenantID](tenantID)
	r.AssignedStaff = ptrFromNull[property.StaffID](staffID)
	r.Priority = property.Priority(priority)
	r.Status = property.MaintenanceStatus(status)
	r.DateRequested = date
	return r, nil
}

func (q *queries) InsertStaff(ctx context.Context, s property.Staff) (property.StaffID, error) {
	res, err := q.q.ExecContext(ctx, `INSERT INTO staff (name, role, contact) VALUES (?, ?, ?)`,
		s.Name, nullString(s.Role), nullString(s.Contact))
	if err != nil {
		return 0, fmt.Errorf("failed to insert staff: %w", err)
	}
	id, err := res.LastInsertId()
	return property.StaffID(id), err
}

func (q *queries) GetStaff(ctx context.Context, id property.StaffID) (property.Staff, error) {
	row := q.q.QueryRowContext(ctx, `SELECT id, name, role, contact FROM staff WHERE id = ?`, int64(id))
	s, err := scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return property.Staff{}, property.NotFound("staff", int64(id))
	}
	return s, err
}

func (q *queries) ListStaff(ctx context.Context) ([]property.Staff, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, name, role, contact FROM staff ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStaff(row scanner) (property.Staff, error) {
	var (
		s             property.Staff
		id            int64
		role, contact sql.NullString
	)
	if err := row.Scan(&id, &s.Name, &role, &contact); err != nil {
		return property.Staff{}, err
	}
	s.ID = property.StaffID(id)
	s.Role = role.String
	s.Contact = contact.String
	return s, nil
}

// =============================================================================
// REPORT LOG
// =============================================================================

func (q *queries) InsertReport(ctx context.Context, r property.Report) (property.ReportID, error) {
	res, err := q.q.ExecContext(ctx, `INSERT INTO reports (type, generated_date, file_path) VALUES (?, ?, ?)`,
		r.Type, r.GeneratedDate.String(), nullString(r.FilePath))
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}
	id, err := res.LastInsertId()
	return property.ReportID(id), err
}

func (q *queries) ListReports(ctx context.Context) ([]property.Report, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, type, generated_date, file_path FROM reports ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []property.Report
	for rows.Next() {
		var (
			r         property.Report
			id        int64
			generated string
			path      sql.NullString
		)
		if err := rows.Scan(&id, &r.Type, &generated, &path); err != nil {
			return nil, err
		}
		date, err := scanDate(generated)
		if err != nil {
			return nil, err
		}
		r.ID = property.ReportID(id)
		r.GeneratedDate = date
		r.FilePath = path.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
