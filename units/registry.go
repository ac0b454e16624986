/*
Package units implements the Unit Registry.

PURPOSE:
  Tracks each unit's occupancy status and enforces the Dorm capacity rule.
  Status is DERIVED: a unit is Occupied iff at least one Active tenant
  references it. The registry writes that derived value; it never decides
  occupancy on its own.

INVARIANTS:
  1. Occupied <=> at least one Active tenant has UnitID == unit.ID
  2. A Dorm unit holds at most Rules.DormCapacity Active Dorm tenants
  3. Family/Solo units have no capacity check (deliberate asymmetry)

TRANSACTIONS:
  The registry is bound to whatever Store it is given. Flows that mutate
  tenants construct a Registry on the transactional Store inside WithTx so
  the capacity check and the status refresh see the same snapshot as the
  tenant write.

EXAMPLE:
  err := store.WithTx(ctx, func(s property.Store) error {
      reg := units.New(s, rules)
      if err := reg.CheckDormCapacity(ctx, unitID, 0); err != nil {
          return err
      }
      ... write tenant ...
      return reg.Refresh(ctx, unitID)
  })

SEE ALSO:
  - tenants/ledger.go: Calls CheckDormCapacity and Refresh
  - property/errors.go: CapacityError, InvariantError
*/
package units

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
)

// Registry manages unit records and their derived status.
type Registry struct {
	store property.Store
	rules property.Rules
}

func New(store property.Store, rules property.Rules) *Registry {
	return &Registry{store: store, rules: rules.Normalize()}
}

// =============================================================================
// UNIT RECORDS
// =============================================================================

// Create registers a new Vacant unit.
func (r *Registry) Create(ctx context.Context, code string, unitType property.UnitType, price decimal.Decimal) (property.Unit, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return property.Unit{}, property.Invalid("code", "unit code required")
	}
	if !unitType.Valid() {
		return property.Unit{}, property.Invalid("type", "must be Family, Solo or Dorm")
	}
	if price.IsNegative() {
		return property.Unit{}, property.Invalid("price", "must not be negative")
	}

	u := property.Unit{Code: code, Type: unitType, Price: price, Status: property.UnitVacant}
	id, err := r.store.InsertUnit(ctx, u)
	if err != nil {
		return property.Unit{}, err
	}
	u.ID = id
	return u, nil
}

func (r *Registry) Get(ctx context.Context, id property.UnitID) (property.Unit, error) {
	return r.store.GetUnit(ctx, id)
}

// List returns all units ordered by code.
func (r *Registry) List(ctx context.Context) ([]property.Unit, error) {
	all, err := r.store.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all, nil
}

// Available returns Vacant units ordered by code.
func (r *Registry) Available(ctx context.Context) ([]property.Unit, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []property.Unit
	for _, u := range all {
		if u.Status == property.UnitVacant {
			out = append(out, u)
		}
	}
	return out, nil
}

// =============================================================================
// STATUS
// =============================================================================

func (r *Registry) SetOccupied(ctx context.Context, id property.UnitID) error {
	return r.store.SetUnitStatus(ctx, id, property.UnitOccupied)
}

func (r *Registry) SetVacant(ctx context.Context, id property.UnitID) error {
	return r.store.SetUnitStatus(ctx, id, property.UnitVacant)
}

// Refresh writes the status implied by the unit's Active tenants.
func (r *Registry) Refresh(ctx context.Context, id property.UnitID) error {
	derived, err := r.derivedStatus(ctx, id)
	if err != nil {
		return err
	}
	if derived == property.UnitOccupied {
		return r.SetOccupied(ctx, id)
	}
	return r.SetVacant(ctx, id)
}

// RefreshAll refreshes each non-nil unit reference once.
func (r *Registry) RefreshAll(ctx context.Context, ids ...*property.UnitID) error {
	seen := make(map[property.UnitID]bool)
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if err := r.Refresh(ctx, *id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) derivedStatus(ctx context.Context, id property.UnitID) (property.UnitStatus, error) {
	if _, err := r.store.GetUnit(ctx, id); err != nil {
		return "", err
	}
	tenants, err := r.store.ListTenantsByUnit(ctx, id)
	if err != nil {
		return "", err
	}
	for _, t := range tenants {
		if t.IsActive() {
			return property.UnitOccupied, nil
		}
	}
	return property.UnitVacant, nil
}

// =============================================================================
// DORM CAPACITY
// =============================================================================

// CapacityUsed counts Active Dorm tenants assigned to the unit.
func (r *Registry) CapacityUsed(ctx context.Context, id property.UnitID) (int, error) {
	return r.countDorm(ctx, id, 0)
}

// CheckDormCapacity fails with CapacityExceeded when the unit already holds
// DormCapacity Active Dorm tenants. The tenant identified by excluding (if
// non-zero) is left out of the count, so a no-op reassignment never trips it.
func (r *Registry) CheckDormCapacity(ctx context.Context, id property.UnitID, excluding property.TenantID) error {
	if _, err := r.store.GetUnit(ctx, id); err != nil {
		return err
	}
	used, err := r.countDorm(ctx, id, excluding)
	if err != nil {
		return err
	}
	if used >= r.rules.DormCapacity {
		return &property.CapacityError{UnitID: id, Occupants: used, Max: r.rules.DormCapacity}
	}
	return nil
}

func (r *Registry) countDorm(ctx context.Context, id property.UnitID, excluding property.TenantID) (int, error) {
	tenants, err := r.store.ListTenantsByUnit(ctx, id)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tenants {
		if t.ID != excluding && t.OccupiesDormSlot() {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// VERIFICATION
// =============================================================================

// Verify checks the occupancy invariant for every unit and returns an
// InvariantError for the first unit out of sync.
func (r *Registry) Verify(ctx context.Context) error {
	all, err := r.store.ListUnits(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		derived, err := r.derivedStatus(ctx, u.ID)
		if err != nil {
			return err
		}
		if derived != u.Status {
			return &property.InvariantError{UnitID: u.ID, Stored: u.Status, Derived: derived}
		}
	}
	return nil
}
