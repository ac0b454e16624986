package maintenance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/maintenance"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/property/store"
)

var today = property.NewDate(2025, time.June, 15)

func newTracker(t *testing.T) (*maintenance.Tracker, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	return maintenance.NewTracker(s, property.FixedClock{Day: today}), s
}

func TestSubmit_Defaults(t *testing.T) {
	// GIVEN: A request with no priority and no tenant
	// WHEN: Submitted
	// THEN: Pending, Medium, dated today, description trimmed

	tr, _ := newTracker(t)

	r, err := tr.Submit(context.Background(), nil, "  Leaking faucet in hallway ", "", decimal.Zero)
	require.NoError(t, err)

	assert.NotZero(t, r.ID)
	assert.Nil(t, r.TenantID)
	assert.Equal(t, "Leaking faucet in hallway", r.Description)
	assert.Equal(t, property.PriorityMedium, r.Priority)
	assert.Equal(t, property.MaintenancePending, r.Status)
	assert.Equal(t, today, r.DateRequested)
}

func TestSubmit_Rejections(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	missing := property.TenantID(404)

	_, err := tr.Submit(ctx, nil, "   ", property.PriorityLow, decimal.Zero)
	assert.ErrorIs(t, err, property.ErrValidation)

	_, err = tr.Submit(ctx, nil, "Broken window", "Urgent", decimal.Zero)
	var vErr *property.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "priority", vErr.Field)

	_, err = tr.Submit(ctx, &missing, "Broken window", property.PriorityHigh, decimal.Zero)
	assert.ErrorIs(t, err, property.ErrNotFound)

	all, err := tr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmit_ForTenant(t *testing.T) {
	tr, s := newTracker(t)
	ctx := context.Background()
	tenantID, err := s.InsertTenant(ctx, property.Tenant{Name: "Juan Dela Cruz", Type: property.UnitSolo, Status: property.TenantActive})
	require.NoError(t, err)

	r, err := tr.Submit(ctx, &tenantID, "No hot water", property.PriorityHigh, decimal.NewFromInt(350))
	require.NoError(t, err)

	got, err := tr.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TenantID)
	assert.Equal(t, tenantID, *got.TenantID)
	assert.True(t, decimal.NewFromInt(350).Equal(got.Fee))
}

func TestUpdateStatus_Unconstrained(t *testing.T) {
	// GIVEN: A Done request
	// WHEN: Set back to Pending
	// THEN: Allowed; unknown statuses are rejected

	tr, _ := newTracker(t)
	ctx := context.Background()
	r, err := tr.Submit(ctx, nil, "Repaint lobby", property.PriorityLow, decimal.Zero)
	require.NoError(t, err)

	r, err = tr.UpdateStatus(ctx, r.ID, property.MaintenanceDone)
	require.NoError(t, err)
	assert.Equal(t, property.MaintenanceDone, r.Status)

	r, err = tr.UpdateStatus(ctx, r.ID, property.MaintenancePending)
	require.NoError(t, err)
	assert.Equal(t, property.MaintenancePending, r.Status)

	_, err = tr.UpdateStatus(ctx, r.ID, "Cancelled")
	assert.ErrorIs(t, err, property.ErrValidation)

	_, err = tr.UpdateStatus(ctx, 999, property.MaintenanceOngoing)
	assert.ErrorIs(t, err, property.ErrNotFound)
}

func TestAssignStaff(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	r, err := tr.Submit(ctx, nil, "Fix gate latch", property.PriorityMedium, decimal.Zero)
	require.NoError(t, err)

	staff, err := tr.AddStaff(ctx, property.Staff{Name: " Pedro Santos ", Role: "Handyman"})
	require.NoError(t, err)
	assert.Equal(t, "Pedro Santos", staff.Name)

	r, err = tr.AssignStaff(ctx, r.ID, &staff.ID)
	require.NoError(t, err)
	require.NotNil(t, r.AssignedStaff)
	assert.Equal(t, staff.ID, *r.AssignedStaff)

	missing := property.StaffID(99)
	_, err = tr.AssignStaff(ctx, r.ID, &missing)
	assert.ErrorIs(t, err, property.ErrNotFound)

	r, err = tr.AssignStaff(ctx, r.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, r.AssignedStaff)

	got, err := tr.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedStaff, "clearing is persisted")
}

func TestAddStaff_NameRequired(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.AddStaff(ctx, property.Staff{Name: "  "})
	assert.ErrorIs(t, err, property.ErrValidation)

	_, err = tr.AddStaff(ctx, property.Staff{Name: "Maria Lopez", Role: "Cleaner"})
	require.NoError(t, err)

	staff, err := tr.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Cleaner", staff[0].Role)
}
