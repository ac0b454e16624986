// Package maintenance implements the Maintenance Tracker: a queue of repair
// requests optionally tied to a tenant, and the staff who work them.
//
// Status transitions are unconstrained. Any known status may overwrite any
// other; Done can be reopened to Pending.
package maintenance

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
)

type Tracker struct {
	store property.Store
	clock property.Clock
}

func NewTracker(store property.Store, clock property.Clock) *Tracker {
	if clock == nil {
		clock = property.SystemClock{}
	}
	return &Tracker{store: store, clock: clock}
}

// Submit files a Pending request dated today. tenantID may be nil for
// requests that concern common areas.
func (t *Tracker) Submit(ctx context.Context, tenantID *property.TenantID, description string, priority property.Priority, fee decimal.Decimal) (property.MaintenanceRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return property.MaintenanceRequest{}, property.Invalid("description", "description required")
	}
	if priority == "" {
		priority = property.PriorityMedium
	}
	if !priority.Valid() {
		return property.MaintenanceRequest{}, property.Invalid("priority", "must be Low, Medium or High")
	}
	if tenantID != nil {
		if _, err := t.store.GetTenant(ctx, *tenantID); err != nil {
			return property.MaintenanceRequest{}, err
		}
	}

	r := property.MaintenanceRequest{
		Description:   description,
		Priority:      priority,
		DateRequested: t.clock.Today(),
		Status:        property.MaintenancePending,
		Fee:           fee,
	}
	if tenantID != nil {
		id := *tenantID
		r.TenantID = &id
	}
	id, err := t.store.InsertRequest(ctx, r)
	if err != nil {
		return property.MaintenanceRequest{}, err
	}
	r.ID = id
	return r, nil
}

// UpdateStatus overwrites the request's status.
func (t *Tracker) UpdateStatus(ctx context.Context, id property.RequestID, status property.MaintenanceStatus) (property.MaintenanceRequest, error) {
	if !status.Valid() {
		return property.MaintenanceRequest{}, property.Invalid("status", "must be Pending, Ongoing or Done")
	}
	r, err := t.store.GetRequest(ctx, id)
	if err != nil {
		return property.MaintenanceRequest{}, err
	}
	r.Status = status
	if err := t.store.UpdateRequest(ctx, r); err != nil {
		return property.MaintenanceRequest{}, err
	}
	return r, nil
}

// AssignStaff sets (or, with a nil staffID, clears) the assignee.
func (t *Tracker) AssignStaff(ctx context.Context, id property.RequestID, staffID *property.StaffID) (property.MaintenanceRequest, error) {
	r, err := t.store.GetRequest(ctx, id)
	if err != nil {
		return property.MaintenanceRequest{}, err
	}
	r.AssignedStaff = nil
	if staffID != nil {
		if _, err := t.store.GetStaff(ctx, *staffID); err != nil {
			return property.MaintenanceRequest{}, err
		}
		sid := *staffID
		r.AssignedStaff = &sid
	}
	if err := t.store.UpdateRequest(ctx, r); err != nil {
		return property.MaintenanceRequest{}, err
	}
	return r, nil
}

func (t *Tracker) Get(ctx context.Context, id property.RequestID) (property.MaintenanceRequest, error) {
	return t.store.GetRequest(ctx, id)
}

// List returns requests in submission order.
func (t *Tracker) List(ctx context.Context) ([]property.MaintenanceRequest, error) {
	return t.store.ListRequests(ctx)
}

// =============================================================================
// STAFF
// =============================================================================

func (t *Tracker) AddStaff(ctx context.Context, s property.Staff) (property.Staff, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Role = strings.TrimSpace(s.Role)
	s.Contact = strings.TrimSpace(s.Contact)
	if s.Name == "" {
		return property.Staff{}, property.Invalid("name", "staff name required")
	}
	s.ID = 0
	id, err := t.store.InsertStaff(ctx, s)
	if err != nil {
		return property.Staff{}, err
	}
	s.ID = id
	return s, nil
}

func (t *Tracker) ListStaff(ctx context.Context) ([]property.Staff, error) {
	return t.store.ListStaff(ctx)
}
