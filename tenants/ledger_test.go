package tenants_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/property/store"
	"github.com/warp/tenancy-engine/tenants"
	"github.com/warp/tenancy-engine/units"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var today = property.NewDate(2025, time.June, 15)

type fixture struct {
	store  *store.Memory
	ledger *tenants.Ledger
	units  *units.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemory()
	rules := property.DefaultRules()
	return &fixture{
		store:  s,
		ledger: tenants.NewLedger(s, property.FixedClock{Day: today}, rules),
		units:  units.New(s, rules),
	}
}

func (f *fixture) unit(t *testing.T, code string, typ property.UnitType) property.UnitID {
	t.Helper()
	u, err := f.units.Create(context.Background(), code, typ, decimal.NewFromInt(5000))
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) status(t *testing.T, id property.UnitID) property.UnitStatus {
	t.Helper()
	u, err := f.units.Get(context.Background(), id)
	require.NoError(t, err)
	return u.Status
}

func dormTenant(name string, unitID property.UnitID) property.Tenant {
	return property.Tenant{
		Name:            name,
		Contact:         "09171234567",
		UnitID:          &unitID,
		Type:            property.UnitDorm,
		GuardianName:    "Maria Santos",
		GuardianContact: "09179876543",
		DepositPaid:     decimal.NewFromInt(3000),
		AdvancePaid:     decimal.NewFromInt(3000),
	}
}

func familyTenant(name string, unitID property.UnitID) property.Tenant {
	return property.Tenant{
		Name:        name,
		Contact:     "0288881234",
		UnitID:      &unitID,
		Type:        property.UnitFamily,
		DepositPaid: decimal.NewFromInt(5000),
	}
}

// =============================================================================
// CREATE
// =============================================================================

func TestLedger_Create_OccupiesUnit(t *testing.T) {
	// GIVEN: A vacant family unit
	// WHEN: A tenant is created in it
	// THEN: The tenant is Active, moved in today, and the unit is Occupied

	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "A-101", property.UnitFamily)
	require.Equal(t, property.UnitVacant, f.status(t, unitID))

	created, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, property.TenantActive, created.Status)
	require.NotNil(t, created.MoveIn)
	assert.Equal(t, today, *created.MoveIn)
	assert.Equal(t, property.UnitOccupied, f.status(t, unitID))
	assert.NoError(t, f.units.Verify(ctx))
}

func TestLedger_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "D-1", property.UnitDorm)

	tests := []struct {
		name   string
		mutate func(*property.Tenant)
		field  string
	}{
		{"single name", func(t *property.Tenant) { t.Name = "Juan" }, "name"},
		{"unknown type", func(t *property.Tenant) { t.Type = "Penthouse" }, "type"},
		{"dorm without guardian", func(t *property.Tenant) { t.GuardianName = "" }, "guardian_name"},
		{"guardian single name", func(t *property.Tenant) { t.GuardianName = "Maria" }, "guardian_name"},
		{"guardian contact letters", func(t *property.Tenant) { t.GuardianContact = "call me" }, "guardian_contact"},
		{"contact without digits", func(t *property.Tenant) { t.Contact = "none" }, "contact"},
		{"move-out before move-in", func(t *property.Tenant) {
			t.MoveIn = property.NewDate(2025, time.June, 10).Ptr()
			t.MoveOut = property.NewDate(2025, time.June, 1).Ptr()
		}, "move_out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := dormTenant("Ana Reyes", unitID)
			tt.mutate(&tenant)

			_, err := f.ledger.Create(ctx, tenant)

			require.ErrorIs(t, err, property.ErrValidation)
			var verr *property.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	all, err := f.ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected tenants must not be inserted")
	assert.Equal(t, property.UnitVacant, f.status(t, unitID))
}

func TestLedger_Create_NonDormGuardianOptional(t *testing.T) {
	f := newFixture(t)
	unitID := f.unit(t, "S-1", property.UnitSolo)

	tenant := familyTenant("Pedro Penduko", unitID)
	tenant.Type = property.UnitSolo

	_, err := f.ledger.Create(context.Background(), tenant)
	assert.NoError(t, err)
}

func TestLedger_Create_UnknownUnit(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Create(context.Background(), familyTenant("Juan Dela Cruz", 99))

	assert.ErrorIs(t, err, property.ErrNotFound)
}

// =============================================================================
// DORM CAPACITY
// =============================================================================

func TestLedger_DormCapacity_FifthTenantRejected(t *testing.T) {
	// GIVEN: A Dorm unit with 4 Active Dorm tenants
	// WHEN: A fifth Dorm tenant is created in it
	// THEN: CapacityExceeded, and the unit still has exactly 4

	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "D-1", property.UnitDorm)

	for _, name := range []string{"Ana Reyes", "Ben Cruz", "Carla Lim", "Dan Uy"} {
		_, err := f.ledger.Create(ctx, dormTenant(name, unitID))
		require.NoError(t, err)
	}

	_, err := f.ledger.Create(ctx, dormTenant("Eve Tan", unitID))

	require.ErrorIs(t, err, property.ErrCapacityExceeded)
	var capErr *property.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, unitID, capErr.UnitID)
	assert.Equal(t, 4, capErr.Occupants)
	assert.Equal(t, 4, capErr.Max)

	used, err := f.units.CapacityUsed(ctx, unitID)
	require.NoError(t, err)
	assert.Equal(t, 4, used)

	all, err := f.ledger.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestLedger_DormCapacity_MovedOutFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "D-1", property.UnitDorm)

	var first property.Tenant
	for i, name := range []string{"Ana Reyes", "Ben Cruz", "Carla Lim", "Dan Uy"} {
		created, err := f.ledger.Create(ctx, dormTenant(name, unitID))
		require.NoError(t, err)
		if i == 0 {
			first = created
		}
	}

	movedOut := property.TenantMovedOut
	_, err := f.ledger.Update(ctx, first.ID, tenants.Update{Status: &movedOut})
	require.NoError(t, err)

	_, err = f.ledger.Create(ctx, dormTenant("Eve Tan", unitID))
	assert.NoError(t, err, "a Moved out tenant no longer counts toward capacity")

	// Reinstating the first tenant would make five.
	active := property.TenantActive
	_, err = f.ledger.Update(ctx, first.ID, tenants.Update{Status: &active})
	assert.ErrorIs(t, err, property.ErrCapacityExceeded)
}

func TestLedger_NonDormUnit_NoCapacityLimit(t *testing.T) {
	// Family and Solo units accept any number of occupants.
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "F-1", property.UnitFamily)

	for _, name := range []string{"A One", "B Two", "C Three", "D Four", "E Five", "F Six"} {
		_, err := f.ledger.Create(ctx, familyTenant(name, unitID))
		require.NoError(t, err)
	}

	list, err := f.ledger.ListByUnit(ctx, unitID)
	require.NoError(t, err)
	assert.Len(t, list, 6)
}

// =============================================================================
// UPDATE & ASSIGN
// =============================================================================

func TestLedger_Update_StatusRefreshesUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "A-101", property.UnitFamily)
	created, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)

	movedOut := property.TenantMovedOut
	_, err = f.ledger.Update(ctx, created.ID, tenants.Update{Status: &movedOut})
	require.NoError(t, err)
	assert.Equal(t, property.UnitVacant, f.status(t, unitID))

	active := property.TenantActive
	_, err = f.ledger.Update(ctx, created.ID, tenants.Update{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, property.UnitOccupied, f.status(t, unitID))
	assert.NoError(t, f.units.Verify(ctx))
}

func TestLedger_Update_PartialFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "A-101", property.UnitFamily)
	created, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)

	contact := "09990001111"
	updated, err := f.ledger.Update(ctx, created.ID, tenants.Update{Contact: &contact})
	require.NoError(t, err)

	assert.Equal(t, "09990001111", updated.Contact)
	assert.Equal(t, "Juan Dela Cruz", updated.Name)
	assert.True(t, created.DepositPaid.Equal(updated.DepositPaid))

	badName := "Juan"
	_, err = f.ledger.Update(ctx, created.ID, tenants.Update{Name: &badName})
	assert.ErrorIs(t, err, property.ErrValidation)

	_, err = f.ledger.Update(ctx, 999, tenants.Update{Contact: &contact})
	assert.ErrorIs(t, err, property.ErrNotFound)
}

func TestLedger_Assign_RefreshesBothUnits(t *testing.T) {
	// GIVEN: A tenant in unit A, unit B vacant
	// WHEN: The tenant is assigned to B
	// THEN: A becomes Vacant and B Occupied, atomically

	f := newFixture(t)
	ctx := context.Background()
	a := f.unit(t, "A-101", property.UnitFamily)
	b := f.unit(t, "B-202", property.UnitFamily)
	created, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", a))
	require.NoError(t, err)

	moved, err := f.ledger.Assign(ctx, created.ID, &b)
	require.NoError(t, err)

	require.NotNil(t, moved.UnitID)
	assert.Equal(t, b, *moved.UnitID)
	assert.Equal(t, property.UnitVacant, f.status(t, a))
	assert.Equal(t, property.UnitOccupied, f.status(t, b))

	cleared, err := f.ledger.Assign(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.UnitID)
	assert.Equal(t, property.UnitVacant, f.status(t, b))
	assert.NoError(t, f.units.Verify(ctx))
}

func TestLedger_Assign_FullDormRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dorm := f.unit(t, "D-1", property.UnitDorm)
	other := f.unit(t, "D-2", property.UnitDorm)

	for _, name := range []string{"Ana Reyes", "Ben Cruz", "Carla Lim", "Dan Uy"} {
		_, err := f.ledger.Create(ctx, dormTenant(name, dorm))
		require.NoError(t, err)
	}
	mover, err := f.ledger.Create(ctx, dormTenant("Eve Tan", other))
	require.NoError(t, err)

	_, err = f.ledger.Assign(ctx, mover.ID, &dorm)
	require.ErrorIs(t, err, property.ErrCapacityExceeded)

	// Rolled back: the tenant stays where it was.
	got, err := f.ledger.Get(ctx, mover.ID)
	require.NoError(t, err)
	assert.Equal(t, other, *got.UnitID)
	assert.Equal(t, property.UnitOccupied, f.status(t, other))
}

// =============================================================================
// SOFT DELETE & RESTORE
// =============================================================================

func TestLedger_SoftDeleteRestore_RoundTrip(t *testing.T) {
	// GIVEN: An Active tenant with a deposit, alone in its unit
	// WHEN: Soft-deleted, then restored
	// THEN: The unit goes Vacant then Occupied; the restored tenant has a
	//       fresh id, the same data, and zero advance/deposit; a second
	//       restore of the same record fails NotFound

	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "A-101", property.UnitFamily)
	original, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)

	archived, err := f.ledger.SoftDelete(ctx, original.ID, "")
	require.NoError(t, err)

	assert.Equal(t, tenants.DefaultDeleteReason, archived.Reason)
	assert.Equal(t, today, archived.DeletedDate)
	assert.Equal(t, original.ID, archived.Tenant.ID)
	assert.Equal(t, property.UnitVacant, f.status(t, unitID))
	_, err = f.ledger.Get(ctx, original.ID)
	assert.ErrorIs(t, err, property.ErrNotFound)

	restored, err := f.ledger.Restore(ctx, archived.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, restored.ID)
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.Contact, restored.Contact)
	assert.Equal(t, *original.UnitID, *restored.UnitID)
	assert.Equal(t, *original.MoveIn, *restored.MoveIn)
	assert.True(t, restored.DepositPaid.IsZero())
	assert.True(t, restored.AdvancePaid.IsZero())
	assert.Equal(t, property.UnitOccupied, f.status(t, unitID))

	_, err = f.ledger.Restore(ctx, archived.ID)
	assert.ErrorIs(t, err, property.ErrNotFound)

	deleted, err := f.ledger.ListDeleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestLedger_SoftDelete_KeepsUnitOccupiedByOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "F-1", property.UnitFamily)
	first, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, familyTenant("Rosa Dela Cruz", unitID))
	require.NoError(t, err)

	_, err = f.ledger.SoftDelete(ctx, first.ID, "moved abroad")
	require.NoError(t, err)

	assert.Equal(t, property.UnitOccupied, f.status(t, unitID))
	assert.NoError(t, f.units.Verify(ctx))
}

func TestLedger_Restore_IntoFullDormRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "D-1", property.UnitDorm)

	var leaver property.Tenant
	for i, name := range []string{"Ana Reyes", "Ben Cruz", "Carla Lim", "Dan Uy"} {
		created, err := f.ledger.Create(ctx, dormTenant(name, unitID))
		require.NoError(t, err)
		if i == 0 {
			leaver = created
		}
	}
	archived, err := f.ledger.SoftDelete(ctx, leaver.ID, "")
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, dormTenant("Eve Tan", unitID))
	require.NoError(t, err)

	_, err = f.ledger.Restore(ctx, archived.ID)
	require.ErrorIs(t, err, property.ErrCapacityExceeded)

	// The archival record survives the failed restore.
	d, err := f.store.GetDeleted(ctx, archived.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", d.Tenant.Name)
}

func TestLedger_Purge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unitID := f.unit(t, "A-101", property.UnitFamily)
	created, err := f.ledger.Create(ctx, familyTenant("Juan Dela Cruz", unitID))
	require.NoError(t, err)
	archived, err := f.ledger.SoftDelete(ctx, created.ID, "")
	require.NoError(t, err)

	require.NoError(t, f.ledger.Purge(ctx, archived.ID))

	_, err = f.ledger.Restore(ctx, archived.ID)
	assert.ErrorIs(t, err, property.ErrNotFound)
	assert.ErrorIs(t, f.ledger.Purge(ctx, archived.ID), property.ErrNotFound)
}

// =============================================================================
// DETECT MOVE-OUTS
// =============================================================================

func TestLedger_DetectMoveouts_Idempotent(t *testing.T) {
	// GIVEN: One tenant whose move-out was yesterday, one whose move-out is
	//        next week
	// WHEN: DetectMoveouts runs twice
	// THEN: Only the first tenant moves out, its unit is Vacant, and the
	//       second run changes nothing

	f := newFixture(t)
	ctx := context.Background()
	a := f.unit(t, "A-101", property.UnitFamily)
	b := f.unit(t, "B-202", property.UnitFamily)

	leaving := familyTenant("Juan Dela Cruz", a)
	leaving.MoveIn = property.NewDate(2025, time.January, 1).Ptr()
	leaving.MoveOut = today.AddDays(-1).Ptr()
	gone, err := f.ledger.Create(ctx, leaving)
	require.NoError(t, err)

	staying := familyTenant("Rosa Dela Cruz", b)
	staying.MoveIn = property.NewDate(2025, time.January, 1).Ptr()
	staying.MoveOut = today.AddDays(7).Ptr()
	_, err = f.ledger.Create(ctx, staying)
	require.NoError(t, err)

	moved, err := f.ledger.DetectMoveouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []property.TenantID{gone.ID}, moved)

	got, err := f.ledger.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, property.TenantMovedOut, got.Status)
	assert.Equal(t, property.UnitVacant, f.status(t, a))
	assert.Equal(t, property.UnitOccupied, f.status(t, b))

	again, err := f.ledger.DetectMoveouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.NoError(t, f.units.Verify(ctx))
}

func TestLedger_DetectMoveouts_TodayCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.unit(t, "A-101", property.UnitFamily)

	tenant := familyTenant("Juan Dela Cruz", a)
	tenant.MoveIn = property.NewDate(2025, time.January, 1).Ptr()
	tenant.MoveOut = today.Ptr()
	_, err := f.ledger.Create(ctx, tenant)
	require.NoError(t, err)

	moved, err := f.ledger.DetectMoveouts(ctx)
	require.NoError(t, err)
	assert.Len(t, moved, 1)
}
