/*
Package property provides the shared domain model of the tenancy engine.

PURPOSE:
  This package holds the typed records every component agrees on: units,
  tenants and their archival snapshots, payments and maintenance requests.
  It also owns the error taxonomy, the calendar Date/Clock abstraction, the
  tenancy Rules and the persistence interfaces. It has NO business logic
  beyond small derived values (Payment.Total, Unit.IsDorm).

KEY CONCEPTS IN THIS FILE (types.go):
  - Unit:          A rentable space with a derived occupancy status
  - Tenant:        A live ledger record with a lifecycle status
  - DeletedTenant: An archival snapshot produced by soft-delete
  - Payment:       An immutable billing row; Total is derived
  - MaintenanceRequest / Staff: The maintenance queue and its assignees

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal, never float64
  2. Type Safety: each entity has its own ID type
  3. Derived state: Unit.Status and Payment.Total are computed, not entered

SEE ALSO:
  - errors.go: ValidationError, NotFound, CapacityExceeded, InvariantViolation
  - store.go:  Store and TxStore interfaces
  - time.go:   Date and Clock
*/
package property

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UnitID int64
type TenantID int64
type DeletedID int64
type PaymentID int64
type RequestID int64
type StaffID int64
type ReportID int64

// =============================================================================
// UNIT
// =============================================================================

// UnitType is shared by units and tenants. A Dorm tenant occupies a Dorm slot.
type UnitType string

const (
	UnitFamily UnitType = "Family"
	UnitSolo   UnitType = "Solo"
	UnitDorm   UnitType = "Dorm"
)

func (t UnitType) Valid() bool {
	switch t {
	case UnitFamily, UnitSolo, UnitDorm:
		return true
	}
	return false
}

type UnitStatus string

const (
	UnitVacant   UnitStatus = "Vacant"
	UnitOccupied UnitStatus = "Occupied"
)

type Unit struct {
	ID     UnitID
	Code   string
	Type   UnitType
	Price  decimal.Decimal
	Status UnitStatus
}

func (u Unit) IsDorm() bool { return u.Type == UnitDorm }

// =============================================================================
// TENANT
// =============================================================================

type TenantStatus string

const (
	TenantActive   TenantStatus = "Active"
	TenantMovedOut TenantStatus = "Moved out"
)

type Tenant struct {
	ID               TenantID
	Name             string
	Contact          string
	UnitID           *UnitID
	Type             UnitType
	MoveIn           *Date
	MoveOut          *Date
	Status           TenantStatus
	GuardianName     string
	GuardianContact  string
	GuardianRelation string
	EmergencyContact string
	AdvancePaid      decimal.Decimal
	DepositPaid      decimal.Decimal
}

func (t Tenant) IsActive() bool { return t.Status == TenantActive }

// OccupiesDormSlot reports whether the tenant counts against a Dorm unit's capacity.
func (t Tenant) OccupiesDormSlot() bool { return t.IsActive() && t.Type == UnitDorm }

// InUnit reports whether the tenant references the given unit.
func (t Tenant) InUnit(id UnitID) bool { return t.UnitID != nil && *t.UnitID == id }

// DeletedTenant is the archival snapshot left behind by a soft-delete.
// Tenant.ID is the historical identifier; it is never reused on restore.
type DeletedTenant struct {
	ID          DeletedID
	Tenant      Tenant
	DeletedDate Date
	Reason      string
}

// =============================================================================
// PAYMENT
// =============================================================================

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
	PaymentRefund  PaymentStatus = "Refund"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentOverdue, PaymentRefund:
		return true
	}
	return false
}

// Payment is an immutable billing row. The total is always derived from the
// three components, so there is no Total field to set.
type Payment struct {
	ID          PaymentID
	TenantID    TenantID
	Rent        decimal.Decimal
	Electricity decimal.Decimal
	Water       decimal.Decimal
	DatePaid    Date
	Status      PaymentStatus
	Note        string
}

func (p Payment) Total() decimal.Decimal {
	return p.Rent.Add(p.Electricity).Add(p.Water)
}

// =============================================================================
// MAINTENANCE
// =============================================================================

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type MaintenanceStatus string

const (
	MaintenancePending MaintenanceStatus = "Pending"
	MaintenanceOngoing MaintenanceStatus = "Ongoing"
	MaintenanceDone    MaintenanceStatus = "Done"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceOngoing, MaintenanceDone:
		return true
	}
	return false
}

type MaintenanceRequest struct {
	ID            RequestID
	TenantID      *TenantID
	Description   string
	Priority      Priority
	DateRequested Date
	Status        MaintenanceStatus
	AssignedStaff *StaffID
	Fee           decimal.Decimal
}

type Staff struct {
	ID      StaffID
	Name    string
	Role    string
	Contact string
}

// =============================================================================
// REPORT LOG
// =============================================================================

// Report records an artifact produced by the export collaborator.
type Report struct {
	ID            ReportID
	Type          string
	GeneratedDate Date
	FilePath      string
}
