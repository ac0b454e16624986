/*
Package tenants implements the Tenant Ledger.

PURPOSE:
  Owns tenant records and their lifecycle:

      Create ──▶ Active ──(move-out date reached / move-out)──▶ Moved out
                   │                                              │
                   └──────────────▶ SoftDelete ◀──────────────────┘
                                        │
                                        ▼
                              DeletedTenant (archive)
                                        │
                                     Restore ──▶ new Tenant (fresh ID,
                                                  advance/deposit = 0)

CRITICAL INVARIANTS:
  1. Unit status stays derived: every flow that changes which Active
     tenants reference a unit refreshes that unit in the SAME transaction.
  2. Dorm capacity is checked before a Dorm tenant lands on a unit.
  3. Restore is at-most-once: the archival row is deleted in the same
     transaction that inserts the live tenant.
  4. Payments and maintenance rows are never touched by soft-delete.

TRANSACTIONS:
  Every mutating method runs inside TxStore.WithTx and builds a Registry on
  the transactional Store. A failure anywhere rolls the whole flow back.

STATUS CURRENCY:
  There is no scheduler. DetectMoveouts must be triggered before reads that
  rely on accurate status.

SEE ALSO:
  - archive.go:  SoftDelete, Restore, Purge
  - moveouts.go: DetectMoveouts
  - validate.go: Record validation rules
  - units/registry.go: Capacity check and status refresh
*/
package tenants

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/units"
)

// Ledger is the live tenant ledger plus its archive.
type Ledger struct {
	store property.TxStore
	clock property.Clock
	rules property.Rules
}

func NewLedger(store property.TxStore, clock property.Clock, rules property.Rules) *Ledger {
	if clock == nil {
		clock = property.SystemClock{}
	}
	return &Ledger{store: store, clock: clock, rules: rules.Normalize()}
}

// =============================================================================
// READS
// =============================================================================

func (l *Ledger) Get(ctx context.Context, id property.TenantID) (property.Tenant, error) {
	return l.store.GetTenant(ctx, id)
}

// List returns all live tenants ordered by identifier.
func (l *Ledger) List(ctx context.Context) ([]property.Tenant, error) {
	return l.store.ListTenants(ctx)
}

func (l *Ledger) ListByUnit(ctx context.Context, unitID property.UnitID) ([]property.Tenant, error) {
	return l.store.ListTenantsByUnit(ctx, unitID)
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates and inserts a tenant, then occupies its unit.
// Status defaults to Active and move-in defaults to today.
func (l *Ledger) Create(ctx context.Context, t property.Tenant) (property.Tenant, error) {
	t = normalize(t)
	t.ID = 0
	if t.Status == "" {
		t.Status = property.TenantActive
	}
	if t.MoveIn == nil {
		t.MoveIn = l.clock.Today().Ptr()
	}
	if err := Validate(t); err != nil {
		return property.Tenant{}, err
	}

	err := l.store.WithTx(ctx, func(s property.Store) error {
		reg := units.New(s, l.rules)
		if t.UnitID != nil {
			if err := l.checkLanding(ctx, reg, s, t, *t.UnitID); err != nil {
				return err
			}
		}
		id, err := s.InsertTenant(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to insert tenant: %w", err)
		}
		t.ID = id
		return reg.RefreshAll(ctx, t.UnitID)
	})
	if err != nil {
		return property.Tenant{}, err
	}
	return t, nil
}

// checkLanding verifies the unit exists and, for Dorm tenants, has room.
func (l *Ledger) checkLanding(ctx context.Context, reg *units.Registry, s property.Store, t property.Tenant, unitID property.UnitID) error {
	if !t.OccupiesDormSlot() {
		_, err := s.GetUnit(ctx, unitID)
		return err
	}
	return reg.CheckDormCapacity(ctx, unitID, t.ID)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is a partial update. Nil fields are left unchanged.
// The unit reference is not part of it; use Assign to move a tenant.
type Update struct {
	Name             *string
	Contact          *string
	Type             *property.UnitType
	MoveIn           *property.Date
	MoveOut          *property.Date
	ClearMoveOut     bool
	Status           *property.TenantStatus
	GuardianName     *string
	GuardianContact  *string
	GuardianRelation *string
	EmergencyContact *string
	AdvancePaid      *decimal.Decimal
	DepositPaid      *decimal.Decimal
}

func (u Update) apply(t property.Tenant) property.Tenant {
	setString(&t.Name, u.Name)
	setString(&t.Contact, u.Contact)
	setString(&t.GuardianName, u.GuardianName)
	setString(&t.GuardianContact, u.GuardianContact)
	setString(&t.GuardianRelation, u.GuardianRelation)
	setString(&t.EmergencyContact, u.EmergencyContact)
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.MoveIn != nil {
		t.MoveIn = u.MoveIn.Ptr()
	}
	if u.ClearMoveOut {
		t.MoveOut = nil
	} else if u.MoveOut != nil {
		t.MoveOut = u.MoveOut.Ptr()
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.AdvancePaid != nil {
		t.AdvancePaid = *u.AdvancePaid
	}
	if u.DepositPaid != nil {
		t.DepositPaid = *u.DepositPaid
	}
	return t
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Update merges fields into the tenant and re-validates the result.
//
// A status or type change can alter who counts toward the unit, so the
// unit is re-checked (Dorm capacity) and refreshed in the same transaction.
// This is how a moved-out tenant is manually reinstated.
func (l *Ledger) Update(ctx context.Context, id property.TenantID, fields Update) (property.Tenant, error) {
	var updated property.Tenant
	err := l.store.WithTx(ctx, func(s property.Store) error {
		current, err := s.GetTenant(ctx, id)
		if err != nil {
			return err
		}
		next := normalize(fields.apply(current))
		if err := Validate(next); err != nil {
			return err
		}

		reg := units.New(s, l.rules)
		if next.UnitID != nil && next.OccupiesDormSlot() && !current.OccupiesDormSlot() {
			if err := reg.CheckDormCapacity(ctx, *next.UnitID, next.ID); err != nil {
				return err
			}
		}
		if err := s.UpdateTenant(ctx, next); err != nil {
			return err
		}
		updated = next
		return reg.RefreshAll(ctx, next.UnitID)
	})
	return updated, err
}

// =============================================================================
// ASSIGNMENT
// =============================================================================

// Assign moves a tenant to unitID, or clears the unit when unitID is nil.
// The previous and the new unit are both refreshed atomically.
func (l *Ledger) Assign(ctx context.Context, id property.TenantID, unitID *property.UnitID) (property.Tenant, error) {
	var updated property.Tenant
	err := l.store.WithTx(ctx, func(s property.Store) error {
		t, err := s.GetTenant(ctx, id)
		if err != nil {
			return err
		}
		reg := units.New(s, l.rules)
		if unitID != nil && !t.InUnit(*unitID) {
			if err := l.checkLanding(ctx, reg, s, t, *unitID); err != nil {
				return err
			}
		}

		previous := t.UnitID
		t.UnitID = nil
		if unitID != nil {
			target := *unitID
			t.UnitID = &target
		}
		if err := s.UpdateTenant(ctx, t); err != nil {
			return err
		}
		updated = t
		return reg.RefreshAll(ctx, previous, t.UnitID)
	})
	return updated, err
}
