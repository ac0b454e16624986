/*
Package moveout implements the Move-Out & Refund Policy.

PURPOSE:
  Executes a tenant's move-out as ONE compound transition and decides
  whether the deposit is refunded.

REFUND RULE:
  refundEligible = !hasUnpaid && noticeOK && inspectionPassed

  hasUnpaid:        any payment row for the tenant with status != Paid
  noticeOK:         move-in known AND (moveOut - moveIn) >= NoticePeriodDays
  inspectionPassed: attestation from the operator that the unit has no
                    damages or open issues

FLOW:
  1. Reject a target date before the move-in date; nothing is written
  2. Ask the Inspector (outside the transaction; it may wait on a human)
  3. In one transaction:
     a. evaluate hasUnpaid and noticeOK
     b. mark the tenant Moved out with the target date, refresh the unit
     c. if eligible and deposit > 0: append a zero-amount Refund payment
        ("Deposit refunded") and reset the deposit to zero
  4. Report the Outcome; rejected refunds carry human-readable reasons

The transition is applied whatever the refund outcome, and it is not
reversible here. Reinstating a tenant is a manual tenants.Ledger.Update.

SEE ALSO:
  - billing/engine.go:  HasUnpaid, RecordPayment
  - tenants/ledger.go:  Update (manual reinstatement)
*/
package moveout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/billing"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/units"
)

// RefundNote is written on the Refund payment row.
const RefundNote = "Deposit refunded"

// =============================================================================
// INSPECTION ATTESTATION
// =============================================================================

// Inspector supplies the inspection result for a departing tenant.
// true means no damages or open issues were found.
type Inspector interface {
	Inspect(ctx context.Context, t property.Tenant) (bool, error)
}

// Attestation is an Inspector whose answer was collected up front.
type Attestation bool

func (a Attestation) Inspect(context.Context, property.Tenant) (bool, error) {
	return bool(a), nil
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, t property.Tenant) (bool, error)

func (f InspectorFunc) Inspect(ctx context.Context, t property.Tenant) (bool, error) {
	return f(ctx, t)
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome reports what the move-out did and why.
type Outcome struct {
	TenantID         property.TenantID
	MoveOutDate      property.Date
	DaysStayed       *int
	HasUnpaid        bool
	NoticeOK         bool
	InspectionPassed bool
	RefundEligible   bool

	// RefundedAmount is the deposit released; zero when nothing was refunded.
	RefundedAmount  decimal.Decimal
	RefundPaymentID property.PaymentID

	// Reasons explains a rejected refund (or a refund with nothing to pay).
	// An earlier Refund row counts as unpaid, so a tenant reinstated after
	// a refund always gets the unpaid-bills reason on the next move-out.
	Reasons []string
}

func (o Outcome) Refunded() bool { return o.RefundPaymentID != 0 }

// =============================================================================
// POLICY
// =============================================================================

type Policy struct {
	store property.TxStore
	clock property.Clock
	rules property.Rules
}

func NewPolicy(store property.TxStore, clock property.Clock, rules property.Rules) *Policy {
	if clock == nil {
		clock = property.SystemClock{}
	}
	return &Policy{store: store, clock: clock, rules: rules.Normalize()}
}

// MoveOut moves the tenant out on date (today when nil) and applies the
// deposit refund rule.
func (p *Policy) MoveOut(ctx context.Context, tenantID property.TenantID, date *property.Date, inspector Inspector) (Outcome, error) {
	if inspector == nil {
		return Outcome{}, property.Invalid("inspection", "inspection attestation required")
	}
	today := p.clock.Today()
	moveOut := today
	if date != nil {
		moveOut = *date
	}

	tenant, err := p.store.GetTenant(ctx, tenantID)
	if err != nil {
		return Outcome{}, err
	}
	if tenant.MoveIn != nil && moveOut.Before(*tenant.MoveIn) {
		return Outcome{}, property.Invalid("move_out", "must not be before move-in")
	}
	passed, err := inspector.Inspect(ctx, tenant)
	if err != nil {
		return Outcome{}, fmt.Errorf("inspection failed: %w", err)
	}

	var out Outcome
	err = p.store.WithTx(ctx, func(s property.Store) error {
		t, err := s.GetTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		bill := billing.NewEngine(s, p.clock)

		out = p.evaluate(ctx, t, moveOut, passed)
		if out.HasUnpaid, err = bill.HasUnpaid(ctx, t.ID); err != nil {
			return err
		}
		out.finish(p.rules)

		t.Status = property.TenantMovedOut
		t.MoveOut = moveOut.Ptr()
		if err := s.UpdateTenant(ctx, t); err != nil {
			return err
		}
		if err := units.New(s, p.rules).RefreshAll(ctx, t.UnitID); err != nil {
			return err
		}

		if !out.RefundEligible {
			return nil
		}
		if !t.DepositPaid.IsPositive() {
			out.Reasons = append(out.Reasons, "Tenant had no deposit recorded to refund.")
			return nil
		}

		refund, err := bill.RecordPayment(ctx, billing.PaymentInput{
			TenantID: t.ID,
			DatePaid: today.Ptr(),
			Status:   property.PaymentRefund,
			Note:     RefundNote,
		})
		if err != nil {
			return fmt.Errorf("failed to record refund: %w", err)
		}
		out.RefundedAmount = t.DepositPaid
		out.RefundPaymentID = refund.ID

		t.DepositPaid = decimal.Zero
		return s.UpdateTenant(ctx, t)
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// evaluate fills in the notice-period check and inspection result.
func (p *Policy) evaluate(_ context.Context, t property.Tenant, moveOut property.Date, passed bool) Outcome {
	out := Outcome{
		TenantID:         t.ID,
		MoveOutDate:      moveOut,
		InspectionPassed: passed,
		RefundedAmount:   decimal.Zero,
	}
	if t.MoveIn != nil {
		stayed := property.DaysBetween(*t.MoveIn, moveOut)
		out.DaysStayed = &stayed
		out.NoticeOK = stayed >= p.rules.NoticePeriodDays
	}
	return out
}

// finish derives eligibility and the rejection reasons, in the order the
// checks are listed in the refund rule.
func (o *Outcome) finish(rules property.Rules) {
	o.RefundEligible = !o.HasUnpaid && o.NoticeOK && o.InspectionPassed

	if o.HasUnpaid {
		o.Reasons = append(o.Reasons, "Unpaid bills exist; deposit cannot be refunded automatically.")
	}
	switch {
	case o.DaysStayed == nil:
		o.Reasons = append(o.Reasons, "Move-in date unknown; cannot verify notice period.")
	case !o.NoticeOK:
		o.Reasons = append(o.Reasons, fmt.Sprintf("Notice period not met (%d days stayed, requires %d).", *o.DaysStayed, rules.NoticePeriodDays))
	}
	if !o.InspectionPassed {
		o.Reasons = append(o.Reasons, "Inspection indicates possible damages/issues.")
	}
}
