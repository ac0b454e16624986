// Package store provides in-memory property.TxStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/tenancy-engine/property"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements property.TxStore with maps guarded by a single mutex.
// Identifiers are never reused, even after a rollback.
type Memory struct {
	mu sync.RWMutex
	t  *tables
}

type tables struct {
	units    map[property.UnitID]property.Unit
	tenants  map[property.TenantID]property.Tenant
	deleted  map[property.DeletedID]property.DeletedTenant
	payments map[property.PaymentID]property.Payment
	requests map[property.RequestID]property.MaintenanceRequest
	staff    map[property.StaffID]property.Staff
	reports  map[property.ReportID]property.Report

	seq *sequences
}

type sequences struct {
	unit, tenant, deleted, payment, request, staff, report int64
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

func newTables() *tables {
	return &tables{
		units:    make(map[property.UnitID]property.Unit),
		tenants:  make(map[property.TenantID]property.Tenant),
		deleted:  make(map[property.DeletedID]property.DeletedTenant),
		payments: make(map[property.PaymentID]property.Payment),
		requests: make(map[property.RequestID]property.MaintenanceRequest),
		staff:    make(map[property.StaffID]property.Staff),
		reports:  make(map[property.ReportID]property.Report),
		seq:      &sequences{},
	}
}

var _ property.TxStore = (*Memory)(nil)

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(_ context.Context, fn func(property.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.t.clone()
	if err := fn(m.t); err != nil {
		m.t = snapshot
		return err
	}
	return nil
}

// clone copies every table. The sequence counters are shared so a rolled
// back insert still consumes its identifier.
func (t *tables) clone() *tables {
	c := newTables()
	c.seq = t.seq
	for k, v := range t.units {
		c.units[k] = v
	}
	for k, v := range t.tenants {
		c.tenants[k] = v
	}
	for k, v := range t.deleted {
		c.deleted[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.requests {
		c.requests[k] = v
	}
	for k, v := range t.staff {
		c.staff[k] = v
	}
	for k, v := range t.reports {
		c.reports[k] = v
	}
	return c
}

// =============================================================================
// LOCKED ACCESSORS (property.Store on *Memory)
// =============================================================================

func (m *Memory) read() (*tables, func())  { m.mu.RLock(); return m.t, m.mu.RUnlock }
func (m *Memory) write() (*tables, func()) { m.mu.Lock(); return m.t, m.mu.Unlock }

func (m *Memory) InsertUnit(ctx context.Context, u property.Unit) (property.UnitID, error) {
	t, done := m.write()
	defer done()
	return t.InsertUnit(ctx, u)
}

func (m *Memory) GetUnit(ctx context.Context, id property.UnitID) (property.Unit, error) {
	t, done := m.read()
	defer done()
	return t.GetUnit(ctx, id)
}

func (m *Memory) ListUnits(ctx context.Context) ([]property.Unit, error) {
	t, done := m.read()
	defer done()
	return t.ListUnits(ctx)
}

func (m *Memory) SetUnitStatus(ctx context.Context, id property.UnitID, status property.UnitStatus) error {
	t, done := m.write()
	defer done()
	return t.SetUnitStatus(ctx, id, status)
}

func (m *Memory) InsertTenant(ctx context.Context, tn property.Tenant) (property.TenantID, error) {
	t, done := m.write()
	defer done()
	return t.InsertTenant(ctx, tn)
}

func (m *Memory) GetTenant(ctx context.Context, id property.TenantID) (property.Tenant, error) {
	t, done := m.read()
	defer done()
	return t.GetTenant(ctx, id)
}

func (m *Memory) ListTenants(ctx context.Context) ([]property.Tenant, error) {
	t, done := m.read()
	defer done()
	return t.ListTenants(ctx)
}

func (m *Memory) ListTenantsByUnit(ctx context.Context, unitID property.UnitID) ([]property.Tenant, error) {
	t, done := m.read()
	defer done()
	return t.ListTenantsByUnit(ctx, unitID)
}

func (m *Memory) UpdateTenant(ctx context.Context, tn property.Tenant) error {
	t, done := m.write()
	defer done()
	return t.UpdateTenant(ctx, tn)
}

func (m *Memory) DeleteTenant(ctx context.Context, id property.TenantID) error {
	t, done := m.write()
	defer done()
	return t.DeleteTenant(ctx, id)
}

func (m *Memory) InsertDeleted(ctx context.Context, d property.DeletedTenant) (property.DeletedID, error) {
	t, done := m.write()
	defer done()
	return t.InsertDeleted(ctx, d)
}

func (m *Memory) GetDeleted(ctx context.Context, id property.DeletedID) (property.DeletedTenant, error) {
	t, done := m.read()
	defer done()
	return t.GetDeleted(ctx, id)
}

func (m *Memory) ListDeleted(ctx context.Context) ([]property.DeletedTenant, error) {
	t, done := m.read()
	defer done()
	return t.ListDeleted(ctx)
}

func (m *Memory) RemoveDeleted(ctx context.Context, id property.DeletedID) error {
	t, done := m.write()
	defer done()
	return t.RemoveDeleted(ctx, id)
}

func (m *Memory) InsertPayment(ctx context.Context, p property.Payment) (property.PaymentID, error) {
	t, done := m.write()
	defer done()
	return t.InsertPayment(ctx, p)
}

func (m *Memory) ListPayments(ctx context.Context) ([]property.Payment, error) {
	t, done := m.read()
	defer done()
	return t.ListPayments(ctx)
}

func (m *Memory) ListPaymentsByTenant(ctx context.Context, tenantID property.TenantID) ([]property.Payment, error) {
	t, done := m.read()
	defer done()
	return t.ListPaymentsByTenant(ctx, tenantID)
}

func (m *Memory) InsertRequest(ctx context.Context, r property.MaintenanceRequest) (property.RequestID, error) {
	t, done := m.write()
	defer done()
	return t.InsertRequest(ctx, r)
}

func (m *Memory) GetRequest(ctx context.Context, id property.RequestID) (property.MaintenanceRequest, error) {
	t, done := m.read()
	defer done()
	return t.GetRequest(ctx, id)
}

func (m *Memory) ListRequests(ctx context.Context) ([]property.MaintenanceRequest, error) {
	t, done := m.read()
	defer done()
	return t.ListRequests(ctx)
}

func (m *Memory) UpdateRequest(ctx context.Context, r property.MaintenanceRequest) error {
	t, done := m.write()
	defer done()
	return t.UpdateRequest(ctx, r)
}

func (m *Memory) InsertStaff(ctx context.Context, s property.Staff) (property.StaffID, error) {
	t, done := m.write()
	defer done()
	return t.InsertStaff(ctx, s)
}

func (m *Memory) GetStaff(ctx context.Context, id property.StaffID) (property.Staff, error) {
	t, done := m.read()
	defer done()
	return t.GetStaff(ctx, id)
}

func (m *Memory) ListStaff(ctx context.Context) ([]property.Staff, error) {
	t, done := m.read()
	defer done()
	return t.ListStaff(ctx)
}

func (m *Memory) InsertReport(ctx context.Context, r property.Report) (property.ReportID, error) {
	t, done := m.write()
	defer done()
	return t.InsertReport(ctx, r)
}

func (m *Memory) ListReports(ctx context.Context) ([]property.Report, error) {
	t, done := m.read()
	defer done()
	return t.ListReports(ctx)
}

// =============================================================================
// UNLOCKED TABLE OPERATIONS (also the transactional view)
// =============================================================================

func (t *tables) InsertUnit(_ context.Context, u property.Unit) (property.UnitID, error) {
	for _, existing := range t.units {
		if existing.Code == u.Code {
			return 0, property.Invalid("code", fmt.Sprintf("unit code %q already exists", u.Code))
		}
	}
	t.seq.unit++
	u.ID = property.UnitID(t.seq.unit)
	t.units[u.ID] = u
	return u.ID, nil
}

func (t *tables) GetUnit(_ context.Context, id property.UnitID) (property.Unit, error) {
	u, ok := t.units[id]
	if !ok {
		return property.Unit{}, property.NotFound("unit", int64(id))
	}
	return u, nil
}

func (t *tables) ListUnits(_ context.Context) ([]property.Unit, error) {
	return sortedValues(t.units), nil
}

func (t *tables) SetUnitStatus(_ context.Context, id property.UnitID, status property.UnitStatus) error {
	u, ok := t.units[id]
	if !ok {
		return property.NotFound("unit", int64(id))
	}
	u.Status = status
	t.units[id] = u
	return nil
}

func (t *tables) InsertTenant(_ context.Context, tn property.Tenant) (property.TenantID, error) {
	t.seq.tenant++
	tn.ID = property.TenantID(t.seq.tenant)
	t.tenants[tn.ID] = cloneTenant(tn)
	return tn.ID, nil
}

func (t *tables) GetTenant(_ context.Context, id property.TenantID) (property.Tenant, error) {
	tn, ok := t.tenants[id]
	if !ok {
		return property.Tenant{}, property.NotFound("tenant", int64(id))
	}
	return cloneTenant(tn), nil
}

func (t *tables) ListTenants(_ context.Context) ([]property.Tenant, error) {
	out := sortedValues(t.tenants)
	for i := range out {
		out[i] = cloneTenant(out[i])
	}
	return out, nil
}

func (t *tables) ListTenantsByUnit(ctx context.Context, unitID property.UnitID) ([]property.Tenant, error) {
	all, _ := t.ListTenants(ctx)
	var out []property.Tenant
	for _, tn := range all {
		if tn.InUnit(unitID) {
			out = append(out, tn)
		}
	}
	return out, nil
}

func (t *tables) UpdateTenant(_ context.Context, tn property.Tenant) error {
	if _, ok := t.tenants[tn.ID]; !ok {
		return property.NotFound("tenant", int64(tn.ID))
	}
	t.tenants[tn.ID] = cloneTenant(tn)
	return nil
}

func (t *tables) DeleteTenant(_ context.Context, id property.TenantID) error {
	if _, ok := t.tenants[id]; !ok {
		return property.NotFound("tenant", int64(id))
	}
	delete(t.tenants, id)
	return nil
}

func (t *tables) InsertDeleted(_ context.Context, d property.DeletedTenant) (property.DeletedID, error) {
	t.seq.deleted++
	d.ID = property.DeletedID(t.seq.deleted)
	d.Tenant = cloneTenant(d.Tenant)
	t.deleted[d.ID] = d
	return d.ID, nil
}

func (t *tables) GetDeleted(_ context.Context, id property.DeletedID) (property.DeletedTenant, error) {
	d, ok := t.deleted[id]
	if !ok {
		return property.DeletedTenant{}, property.NotFound("deleted tenant", int64(id))
	}
	d.Tenant = cloneTenant(d.Tenant)
	return d, nil
}

func (t *tables) ListDeleted(_ context.Context) ([]property.DeletedTenant, error) {
	out := sortedValues(t.deleted)
	for i := range out {
		out[i].Tenant = cloneTenant(out[i].Tenant)
	}
	return out, nil
}

func (t *tables) RemoveDeleted(_ context.Context, id property.DeletedID) error {
	if _, ok := t.deleted[id]; !ok {
		return property.NotFound("deleted tenant", int64(id))
	}
	delete(t.deleted, id)
	return nil
}

func (t *tables) InsertPayment(_ context.Context, p property.Payment) (property.PaymentID, error) {
	t.seq.payment++
	p.ID = property.PaymentID(t.seq.payment)
	t.payments[p.ID] = p
	return p.ID, nil
}

func (t *tables) ListPayments(_ context.Context) ([]property.Payment, error) {
	return sortedValues(t.payments), nil
}

func (t *tables) ListPaymentsByTenant(_ context.Context, tenantID property.TenantID) ([]property.Payment, error) {
	var out []property.Payment
	for _, p := range sortedValues(t.payments) {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *tables) InsertRequest(_ context.Context, r property.MaintenanceRequest) (property.RequestID, error) {
	t.seq.request++
	r.ID = property.RequestID(t.seq.request)
	t.requests[r.ID] = cloneRequest(r)
	return r.ID, nil
}

func (t *tables) GetRequest(_ context.Context, id property.RequestID) (property.MaintenanceRequest, error) {
	r, ok := t.requests[id]
	if !ok {
		return property.MaintenanceRequest{}, property.NotFound("maintenance request", int64(id))
	}
	return cloneRequest(r), nil
}

func (t *tables) ListRequests(_ context.Context) ([]property.MaintenanceRequest, error) {
	out := sortedValues(t.requests)
	for i := range out {
		out[i] = cloneRequest(out[i])
	}
	return out, nil
}

func (t *tables) UpdateRequest(_ context.Context, r property.MaintenanceRequest) error {
	if _, ok := t.requests[r.ID]; !ok {
		return property.NotFound("maintenance request", int64(r.ID))
	}
	t.requests[r.ID] = cloneRequest(r)
	return nil
}

func (t *tables) InsertStaff(_ context.Context, s property.Staff) (property.StaffID, error) {
	t.seq.staff++
	s.ID = property.StaffID(t.seq.staff)
	t.staff[s.ID] = s
	return s.ID, nil
}

func (t *tables) GetStaff(_ context.Context, id property.StaffID) (property.Staff, error) {
	s, ok := t.staff[id]
	if !ok {
		return property.Staff{}, property.NotFound("staff", int64(id))
	}
	return s, nil
}

func (t *tables) ListStaff(_ context.Context) ([]property.Staff, error) {
	return sortedValues(t.staff), nil
}

func (t *tables) InsertReport(_ context.Context, r property.Report) (property.ReportID, error) {
	t.seq.report++
	r.ID = property.ReportID(t.seq.report)
	t.reports[r.ID] = r
	return r.ID, nil
}

func (t *tables) ListReports(_ context.Context) ([]property.Report, error) {
	return sortedValues(t.reports), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func sortedValues[K ~int64, V any](m map[K]V) []V {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// cloneTenant detaches the nullable fields so callers can't mutate stored rows.
func cloneTenant(t property.Tenant) property.Tenant {
	if t.UnitID != nil {
		id := *t.UnitID
		t.UnitID = &id
	}
	if t.MoveIn != nil {
		d := *t.MoveIn
		t.MoveIn = &d
	}
	if t.MoveOut != nil {
		d := *t.MoveOut
		t.MoveOut = &d
	}
	return t
}

func cloneRequest(r property.MaintenanceRequest) property.MaintenanceRequest {
	if r.TenantID != nil {
		id := *r.TenantID
		r.TenantID = &id
	}
	if r.AssignedStaff != nil {
		id := *r.AssignedStaff
		r.AssignedStaff = &id
	}
	return r
}
