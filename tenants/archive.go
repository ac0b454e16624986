package tenants

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/units"
)

// DefaultDeleteReason is recorded when the operator gives no reason.
const DefaultDeleteReason = "Deleted"

// =============================================================================
// SOFT DELETE
// =============================================================================

// SoftDelete moves a live tenant into the archive and vacates its unit
// (unless other Active tenants still occupy it).
func (l *Ledger) SoftDelete(ctx context.Context, id property.TenantID, reason string) (property.DeletedTenant, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeleteReason
	}

	var archived property.DeletedTenant
	err := l.store.WithTx(ctx, func(s property.Store) error {
		t, err := s.GetTenant(ctx, id)
		if err != nil {
			return err
		}
		archived = property.DeletedTenant{
			Tenant:      t,
			DeletedDate: l.clock.Today(),
			Reason:      reason,
		}
		deletedID, err := s.InsertDeleted(ctx, archived)
		if err != nil {
			return fmt.Errorf("failed to archive tenant: %w", err)
		}
		archived.ID = deletedID

		if err := s.DeleteTenant(ctx, id); err != nil {
			return err
		}
		return units.New(s, l.rules).RefreshAll(ctx, t.UnitID)
	})
	if err != nil {
		return property.DeletedTenant{}, err
	}
	return archived, nil
}

// =============================================================================
// RESTORE
// =============================================================================

// Restore re-creates a live tenant from an archival record.
//
// The tenant receives a NEW identifier; the archived one is historical only.
// Advance and deposit are reset to zero. The archival row is consumed in the
// same transaction, so a second Restore of the same id fails NotFound.
func (l *Ledger) Restore(ctx context.Context, deletedID property.DeletedID) (property.Tenant, error) {
	var restored property.Tenant
	err := l.store.WithTx(ctx, func(s property.Store) error {
		d, err := s.GetDeleted(ctx, deletedID)
		if err != nil {
			return err
		}

		t := d.Tenant
		t.ID = 0
		t.AdvancePaid = decimal.Zero
		t.DepositPaid = decimal.Zero

		reg := units.New(s, l.rules)
		if t.UnitID != nil {
			if err := l.checkLanding(ctx, reg, s, t, *t.UnitID); err != nil {
				return err
			}
		}

		id, err := s.InsertTenant(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to restore tenant: %w", err)
		}
		t.ID = id

		if err := s.RemoveDeleted(ctx, deletedID); err != nil {
			return err
		}
		restored = t
		return reg.RefreshAll(ctx, t.UnitID)
	})
	if err != nil {
		return property.Tenant{}, err
	}
	return restored, nil
}

// =============================================================================
// ARCHIVE MAINTENANCE
// =============================================================================

// Purge permanently removes an archival record. It cannot be undone.
func (l *Ledger) Purge(ctx context.Context, deletedID property.DeletedID) error {
	return l.store.WithTx(ctx, func(s property.Store) error {
		return s.RemoveDeleted(ctx, deletedID)
	})
}

// ListDeleted returns archival records, newest first.
func (l *Ledger) ListDeleted(ctx context.Context) ([]property.DeletedTenant, error) {
	out, err := l.store.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
