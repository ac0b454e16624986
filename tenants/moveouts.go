package tenants

import (
	"context"

	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/units"
)

// DetectMoveouts transitions every tenant whose recorded move-out date has
// been reached to Moved out, and refreshes the affected units.
//
// Idempotent: tenants already Moved out are skipped, so a second run in the
// same day changes nothing. Returns the tenants it transitioned.
func (l *Ledger) DetectMoveouts(ctx context.Context) ([]property.TenantID, error) {
	today := l.clock.Today()

	var moved []property.TenantID
	err := l.store.WithTx(ctx, func(s property.Store) error {
		moved = nil
		all, err := s.ListTenants(ctx)
		if err != nil {
			return err
		}

		var touched []*property.UnitID
		for _, t := range all {
			if t.MoveOut == nil || t.MoveOut.After(today) || t.Status == property.TenantMovedOut {
				continue
			}
			t.Status = property.TenantMovedOut
			if err := s.UpdateTenant(ctx, t); err != nil {
				return err
			}
			moved = append(moved, t.ID)
			touched = append(touched, t.UnitID)
		}
		return units.New(s, l.rules).RefreshAll(ctx, touched...)
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
