package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/auth"
	"github.com/warp/tenancy-engine/billing"
	"github.com/warp/tenancy-engine/maintenance"
	"github.com/warp/tenancy-engine/moveout"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/store/sqlite"
	"github.com/warp/tenancy-engine/tenants"
	"github.com/warp/tenancy-engine/units"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var today = property.NewDate(2025, time.June, 15)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// MIGRATIONS
// =============================================================================

func TestMigrate_Idempotent(t *testing.T) {
	// GIVEN: A database file migrated once by New
	// WHEN: Migrate runs again, and the file is reopened
	// THEN: Nothing is re-applied and the version is unchanged

	path := filepath.Join(t.TempDir(), "apartment.db")
	s, err := sqlite.New(path)
	require.NoError(t, err)
	ctx := context.Background()

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	ran, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, ran)
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()
	again, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, version, again)
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestUnitAndTenant_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	unitID, err := s.InsertUnit(ctx, property.Unit{Code: "A-101", Type: property.UnitDorm, Price: decimal.RequireFromString("3500.50"), Status: property.UnitVacant})
	require.NoError(t, err)

	_, err = s.InsertUnit(ctx, property.Unit{Code: "A-101", Type: property.UnitSolo, Status: property.UnitVacant})
	assert.ErrorIs(t, err, property.ErrValidation, "duplicate code")

	u, err := s.GetUnit(ctx, unitID)
	require.NoError(t, err)
	assert.Equal(t, "A-101", u.Code)
	assert.True(t, decimal.RequireFromString("3500.50").Equal(u.Price))

	in := property.Tenant{
		Name:            "Maria Clara Santos",
		Contact:         "09171234567",
		UnitID:          &unitID,
		Type:            property.UnitDorm,
		MoveIn:          today.Ptr(),
		Status:          property.TenantActive,
		GuardianName:    "Jose Santos",
		GuardianContact: "09980000000",
		DepositPaid:     decimal.NewFromInt(5000),
	}
	id, err := s.InsertTenant(ctx, in)
	require.NoError(t, err)

	got, err := s.GetTenant(ctx, id)
	require.NoError(t, err)
	in.ID = id
	assert.Equal(t, in.Name, got.Name)
	require.NotNil(t, got.UnitID)
	assert.Equal(t, unitID, *got.UnitID)
	require.NotNil(t, got.MoveIn)
	assert.Equal(t, today, *got.MoveIn)
	assert.Nil(t, got.MoveOut)
	assert.Equal(t, "Jose Santos", got.GuardianName)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.DepositPaid))
	assert.True(t, got.AdvancePaid.IsZero())

	byUnit, err := s.ListTenantsByUnit(ctx, unitID)
	require.NoError(t, err)
	assert.Len(t, byUnit, 1)

	_, err = s.GetTenant(ctx, 999)
	assert.ErrorIs(t, err, property.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTenant(ctx, property.Tenant{ID: 999, Name: "No One", Type: property.UnitSolo, Status: property.TenantActive}), property.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTenant(ctx, 999), property.ErrNotFound)
}

func TestPayments_SurviveTenantDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tenantID, err := s.InsertTenant(ctx, property.Tenant{Name: "Ana Reyes", Type: property.UnitSolo, Status: property.TenantActive})
	require.NoError(t, err)
	_, err = s.InsertPayment(ctx, property.Payment{
		TenantID:    tenantID,
		Rent:        decimal.NewFromInt(1000),
		Electricity: decimal.RequireFromString("250.75"),
		Water:       decimal.Zero,
		DatePaid:    today,
		Status:      property.PaymentPaid,
		Note:        "June",
	})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTenant(ctx, tenantID))

	rows, err := s.ListPaymentsByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, decimal.RequireFromString("1250.75").Equal(rows[0].Total()))
	assert.Equal(t, today, rows[0].DatePaid)
	assert.Equal(t, "June", rows[0].Note)
}

func TestMaintenance_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	tracker := maintenance.NewTracker(s, property.FixedClock{Day: today})

	staff, err := tracker.AddStaff(ctx, property.Staff{Name: "Pedro Santos", Role: "Handyman"})
	require.NoError(t, err)
	r, err := tracker.Submit(ctx, nil, "Clogged drain", property.PriorityHigh, decimal.NewFromInt(200))
	require.NoError(t, err)

	_, err = tracker.AssignStaff(ctx, r.ID, &staff.ID)
	require.NoError(t, err)
	_, err = tracker.UpdateStatus(ctx, r.ID, property.MaintenanceOngoing)
	require.NoError(t, err)

	got, err := tracker.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TenantID)
	require.NotNil(t, got.AssignedStaff)
	assert.Equal(t, staff.ID, *got.AssignedStaff)
	assert.Equal(t, property.MaintenanceOngoing, got.Status)
	assert.Equal(t, today, got.DateRequested)
	assert.True(t, decimal.NewFromInt(200).Equal(got.Fee))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx property.Store) error {
		if _, err := tx.InsertUnit(ctx, property.Unit{Code: "X-1", Type: property.UnitSolo, Status: property.UnitVacant}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.ListUnits(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLedgerFlow_OnSQLite(t *testing.T) {
	// GIVEN: A full Dorm unit on SQLite
	// WHEN: A fifth tenant is created, one moves out, and then the fifth retries
	// THEN: Capacity is enforced, the retry succeeds, and the move-out refunds

	s := newStore(t)
	ctx := context.Background()
	clock := property.FixedClock{Day: today}
	rules := property.DefaultRules()
	reg := units.New(s, rules)
	ledger := tenants.NewLedger(s, clock, rules)

	u, err := reg.Create(ctx, "D-1", property.UnitDorm, decimal.NewFromInt(3000))
	require.NoError(t, err)

	dorm := func(name string) property.Tenant {
		unitID := u.ID
		return property.Tenant{
			Name:            name,
			Contact:         "09170000000",
			UnitID:          &unitID,
			Type:            property.UnitDorm,
			MoveIn:          today.AddDays(-40).Ptr(),
			GuardianName:    "Parent Guardian",
			GuardianContact: "09181111111",
			DepositPaid:     decimal.NewFromInt(3000),
		}
	}
	var first property.Tenant
	for i, name := range []string{"Ana One", "Ben Two", "Cara Three", "Dan Four"} {
		created, err := ledger.Create(ctx, dorm(name))
		require.NoError(t, err)
		if i == 0 {
			first = created
		}
	}

	_, err = ledger.Create(ctx, dorm("Eve Five"))
	var capErr *property.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 4, capErr.Occupants)

	out, err := moveout.NewPolicy(s, clock, rules).MoveOut(ctx, first.ID, nil, moveout.Attestation(true))
	require.NoError(t, err)
	assert.True(t, out.Refunded())

	_, err = ledger.Create(ctx, dorm("Eve Five"))
	require.NoError(t, err)

	refunds, err := billing.NewEngine(s, clock).PaymentsFor(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, property.PaymentRefund, refunds[0].Status)

	require.NoError(t, reg.Verify(ctx))
}

func TestArchive_RestoreGetsFreshID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ledger := tenants.NewLedger(s, property.FixedClock{Day: today}, property.DefaultRules())

	created, err := ledger.Create(ctx, property.Tenant{Name: "Ana Reyes", Contact: "09170000001", Type: property.UnitSolo, AdvancePaid: decimal.NewFromInt(100)})
	require.NoError(t, err)
	archived, err := ledger.SoftDelete(ctx, created.ID, "Left early")
	require.NoError(t, err)

	deleted, err := ledger.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, created.ID, deleted[0].Tenant.ID)
	assert.Equal(t, "Left early", deleted[0].Reason)

	restored, err := ledger.Restore(ctx, archived.ID)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, restored.ID)
	assert.True(t, restored.AdvancePaid.IsZero())

	_, err = ledger.Restore(ctx, archived.ID)
	assert.ErrorIs(t, err, property.ErrNotFound)
}

// =============================================================================
// OPERATORS
// =============================================================================

func TestOperators(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	svc := auth.NewService(s).WithCost(bcrypt.MinCost)

	_, err := s.GetOperator(ctx, "admin")
	assert.ErrorIs(t, err, auth.ErrNoOperator)

	created, err := svc.Bootstrap(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.Verify(ctx, "admin", "s3cret"))
	require.NoError(t, svc.Set(ctx, "admin", "rotated"))
	assert.ErrorIs(t, svc.Verify(ctx, "admin", "s3cret"), auth.ErrInvalidCredentials)

	n, err := s.CountOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "set upserts")
}
