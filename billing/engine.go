/*
Package billing implements the Billing Engine.

PURPOSE:
  Records payments and classifies them. Payments are an append-only ledger:
  a row is never edited or deleted, and its total is always derived from
  rent + electricity + water.

KEY OPERATIONS:
  RecordPayment: Append a row for a live tenant
  SumSince:      Income over the last N days
  HasUnpaid:     Any row for the tenant whose status is not Paid
  OverdueList:   Overdue rows, then tenants who never paid

OVERDUE CLASSIFICATION:
  (a) rows of live tenants with status Overdue OR paid before today-N,
      ordered by tenant id then payment id
  (b) live tenants with ZERO rows whose move-in is more than N days ago,
      reported as "No Payment" with no total and no date
  The result is (a) followed by (b).

PERMISSIVENESS:
  Negative components are accepted. A refund or correction entered as a
  negative rent is the operator's call, not the engine's.

SEE ALSO:
  - moveout/policy.go: Uses HasUnpaid and records Refund rows
  - report/: Consumes AllPayments and SumSince
*/
package billing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/property"
)

// StatusNoPayment labels overdue entries for tenants with no payment rows.
const StatusNoPayment = "No Payment"

// Engine records and classifies payments.
type Engine struct {
	store property.Store
	clock property.Clock
}

func NewEngine(store property.Store, clock property.Clock) *Engine {
	if clock == nil {
		clock = property.SystemClock{}
	}
	return &Engine{store: store, clock: clock}
}

// =============================================================================
// RECORDING
// =============================================================================

// PaymentInput describes a payment to record. A nil DatePaid means today and
// an empty Status means Paid.
type PaymentInput struct {
	TenantID    property.TenantID
	Rent        decimal.Decimal
	Electricity decimal.Decimal
	Water       decimal.Decimal
	DatePaid    *property.Date
	Status      property.PaymentStatus
	Note        string
}

// RecordPayment appends an immutable payment row. It doesn't touch tenant state.
func (e *Engine) RecordPayment(ctx context.Context, in PaymentInput) (property.Payment, error) {
	if in.Status == "" {
		in.Status = property.PaymentPaid
	}
	if !in.Status.Valid() {
		return property.Payment{}, property.Invalid("status", "must be Paid, Overdue or Refund")
	}
	if _, err := e.store.GetTenant(ctx, in.TenantID); err != nil {
		return property.Payment{}, err
	}

	p := property.Payment{
		TenantID:    in.TenantID,
		Rent:        in.Rent,
		Electricity: in.Electricity,
		Water:       in.Water,
		DatePaid:    e.clock.Today(),
		Status:      in.Status,
		Note:        in.Note,
	}
	if in.DatePaid != nil {
		p.DatePaid = *in.DatePaid
	}

	id, err := e.store.InsertPayment(ctx, p)
	if err != nil {
		return property.Payment{}, err
	}
	p.ID = id
	return p, nil
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// AllPayments returns every payment row, newest first.
func (e *Engine) AllPayments(ctx context.Context) ([]property.Payment, error) {
	all, err := e.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

// PaymentsFor returns the tenant's payment rows in recording order.
func (e *Engine) PaymentsFor(ctx context.Context, tenantID property.TenantID) ([]property.Payment, error) {
	return e.store.ListPaymentsByTenant(ctx, tenantID)
}

// SumSince totals every payment dated on or after today-days.
func (e *Engine) SumSince(ctx context.Context, days int) (decimal.Decimal, error) {
	since := e.clock.Today().AddDays(-days)
	all, err := e.store.ListPayments(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range all {
		if p.DatePaid.AfterOrEqual(since) {
			sum = sum.Add(p.Total())
		}
	}
	return sum, nil
}

// HasUnpaid reports whether any row for the tenant is not Paid.
// Refund rows count as not Paid.
func (e *Engine) HasUnpaid(ctx context.Context, tenantID property.TenantID) (bool, error) {
	rows, err := e.store.ListPaymentsByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	for _, p := range rows {
		if p.Status != property.PaymentPaid {
			return true, nil
		}
	}
	return false, nil
}

// LastPaymentDate returns the latest DatePaid for the tenant, or nil.
func (e *Engine) LastPaymentDate(ctx context.Context, tenantID property.TenantID) (*property.Date, error) {
	rows, err := e.store.ListPaymentsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var last *property.Date
	for _, p := range rows {
		if last == nil || p.DatePaid.After(*last) {
			last = p.DatePaid.Ptr()
		}
	}
	return last, nil
}
