/*
store.go - Persistence interface for tenancy records

PURPOSE:
  Defines the interface between the rules engine and the database.
  Components never see SQL; they receive a Store at construction and, for
  compound transitions, a transactional Store scoped to one WithTx call.

KEY INTERFACES:
  UnitStore, TenantStore, ArchiveStore, PaymentStore, MaintenanceStore,
  ReportStore: one per record family
  Store:   The union of the above
  TxStore: Store plus WithTx for atomic multi-row writes

ORDERING CONTRACT:
  Every List* method returns rows ordered by identifier ascending.
  Components re-sort when they need another order.

NOT FOUND CONTRACT:
  Get, Update, Delete and Set methods return a *NotFoundError (errors.Is
  ErrNotFound) when the identifier doesn't resolve.

ATOMIC BATCHES:
  WithTx() ensures all-or-nothing semantics. A soft-delete writes the
  archival row, deletes the live row and refreshes the unit; either all
  three land or none do.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:    Production SQLite
  - property/store/memory.go:  In-memory for testing

SEE ALSO:
  - tenants/ledger.go: Uses WithTx for every lifecycle transition
*/
package property

import "context"

// =============================================================================
// RECORD STORES
// =============================================================================

type UnitStore interface {
	InsertUnit(ctx context.Context, u Unit) (UnitID, error)
	GetUnit(ctx context.Context, id UnitID) (Unit, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	SetUnitStatus(ctx context.Context, id UnitID, status UnitStatus) error
}

type TenantStore interface {
	InsertTenant(ctx context.Context, t Tenant) (TenantID, error)
	GetTenant(ctx context.Context, id TenantID) (Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
	ListTenantsByUnit(ctx context.Context, unitID UnitID) ([]Tenant, error)

	// UpdateTenant replaces every column of the row identified by t.ID.
	UpdateTenant(ctx context.Context, t Tenant) error
	DeleteTenant(ctx context.Context, id TenantID) error
}

// ArchiveStore holds soft-deleted tenant snapshots.
type ArchiveStore interface {
	InsertDeleted(ctx context.Context, d DeletedTenant) (DeletedID, error)
	GetDeleted(ctx context.Context, id DeletedID) (DeletedTenant, error)
	ListDeleted(ctx context.Context) ([]DeletedTenant, error)
	RemoveDeleted(ctx context.Context, id DeletedID) error
}

// PaymentStore is append-only. No Update, no Delete.
type PaymentStore interface {
	InsertPayment(ctx context.Context, p Payment) (PaymentID, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	ListPaymentsByTenant(ctx context.Context, tenantID TenantID) ([]Payment, error)
}

type MaintenanceStore interface {
	InsertRequest(ctx context.Context, r MaintenanceRequest) (RequestID, error)
	GetRequest(ctx context.Context, id RequestID) (MaintenanceRequest, error)
	ListRequests(ctx context.Context) ([]MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, r MaintenanceRequest) error

	InsertStaff(ctx context.Context, s Staff) (StaffID, error)
	GetStaff(ctx context.Context, id StaffID) (Staff, error)
	ListStaff(ctx context.Context) ([]Staff, error)
}

type ReportStore interface {
	InsertReport(ctx context.Context, r Report) (ReportID, error)
	ListReports(ctx context.Context) ([]Report, error)
}

// =============================================================================
// STORE - Union used by every component
// =============================================================================

type Store interface {
	UnitStore
	TenantStore
	ArchiveStore
	PaymentStore
	MaintenanceStore
	ReportStore
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	// Writers are serialized: only one WithTx runs at a time.
	WithTx(ctx context.Context, fn func(Store) error) error
}
