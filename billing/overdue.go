package billing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
)

// OverdueEntry is one line of the overdue report. Total and DatePaid are nil
// for "No Payment" entries; PaymentID is zero for them.
type OverdueEntry struct {
	TenantID  property.TenantID
	Name      string
	PaymentID property.PaymentID
	Total     *decimal.Decimal
	DatePaid  *property.Date
	Status    string
}

// OverdueList lists overdue payments of live tenants followed by live
// tenants who never paid and moved in more than policyDays ago.
func (e *Engine) OverdueList(ctx context.Context, policyDays int) ([]OverdueEntry, error) {
	today := e.clock.Today()
	cutoff := today.AddDays(-policyDays)

	tenants, err := e.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := e.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	byTenant := make(map[property.TenantID][]property.Payment)
	for _, p := range payments {
		byTenant[p.TenantID] = append(byTenant[p.TenantID], p)
	}

	sort.SliceStable(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })

	var flagged, neverPaid []OverdueEntry
	for _, t := range tenants {
		rows := byTenant[t.ID]
		if len(rows) == 0 {
			if t.MoveIn != nil && property.DaysBetween(*t.MoveIn, today) > policyDays {
				neverPaid = append(neverPaid, OverdueEntry{TenantID: t.ID, Name: t.Name, Status: StatusNoPayment})
			}
			continue
		}
		for _, p := range rows {
			if p.Status != property.PaymentOverdue && !p.DatePaid.Before(cutoff) {
				continue
			}
			total := p.Total()
			flagged = append(flagged, OverdueEntry{
				TenantID:  t.ID,
				Name:      t.Name,
				PaymentID: p.ID,
				Total:     &total,
				DatePaid:  p.DatePaid.Ptr(),
				Status:    string(p.Status),
			})
		}
	}
	return append(flagged, neverPaid...), nil
}
