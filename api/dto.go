/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

FORMATS:
  Money:  decimal strings ("1000.50"); numbers are accepted on input
  Dates:  "YYYY-MM-DD"; null when unknown

VALIDATION:
  Validation is done by the domain packages, not in DTOs. DTOs are pure
  data carriers; handlers only parse ids and dates.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/billing"
	"github.com/warp/tenancy-engine/moveout"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/report"
)

// =============================================================================
// UNITS
// =============================================================================

type UnitDTO struct {
	ID     int64           `json:"id"`
	Code   string          `json:"code"`
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
	// Occupants counts Active Dorm tenants; only set for Dorm units.
	Occupants *int `json:"occupants,omitempty"`
}

type CreateUnitRequest struct {
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

func toUnitDTO(u property.Unit) UnitDTO {
	return UnitDTO{
		ID:     int64(u.ID),
		Code:   u.Code,
		Type:   string(u.Type),
		Price:  u.Price,
		Status: string(u.Status),
	}
}

// =============================================================================
// TENANTS
// =============================================================================

type TenantDTO struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Contact          string          `json:"contact,omitempty"`
	UnitID           *int64          `json:"unit_id"`
	Type             string          `json:"type"`
	MoveIn           *string         `json:"move_in"`
	MoveOut          *string         `json:"move_out"`
	Status           string          `json:"status"`
	GuardianName     string          `json:"guardian_name,omitempty"`
	GuardianContact  string          `json:"guardian_contact,omitempty"`
	GuardianRelation string          `json:"guardian_relation,omitempty"`
	EmergencyContact string          `json:"emergency_contact,omitempty"`
	AdvancePaid      decimal.Decimal `json:"advance_paid"`
	DepositPaid      decimal.Decimal `json:"deposit_paid"`
}

type CreateTenantRequest struct {
	Name             string          `json:"name"`
	Contact          string          `json:"contact"`
	UnitID           *int64          `json:"unit_id"`
	Type             string          `json:"type"`
	MoveIn           *string         `json:"move_in"`
	MoveOut          *string         `json:"move_out"`
	Status           string          `json:"status"`
	GuardianName     string          `json:"guardian_name"`
	GuardianContact  string          `json:"guardian_contact"`
	GuardianRelation string          `json:"guardian_relation"`
	EmergencyContact string          `json:"emergency_contact"`
	AdvancePaid      decimal.Decimal `json:"advance_paid"`
	DepositPaid      decimal.Decimal `json:"deposit_paid"`
}

// UpdateTenantRequest is a partial update; omitted fields are unchanged.
type UpdateTenantRequest struct {
	Name             *string          `json:"name"`
	Contact          *string          `json:"contact"`
	Type             *string          `json:"type"`
	MoveIn           *string          `json:"move_in"`
	MoveOut          *string          `json:"move_out"`
	ClearMoveOut     bool             `json:"clear_move_out"`
	Status           *string          `json:"status"`
	GuardianName     *string          `json:"guardian_name"`
	GuardianContact  *string          `json:"guardian_contact"`
	GuardianRelation *string          `json:"guardian_relation"`
	EmergencyContact *string          `json:"emergency_contact"`
	AdvancePaid      *decimal.Decimal `json:"advance_paid"`
	DepositPaid      *decimal.Decimal `json:"deposit_paid"`
}

// AssignRequest moves a tenant; a null unit_id clears the assignment.
type AssignRequest struct {
	UnitID *int64 `json:"unit_id"`
}

type DeletedTenantDTO struct {
	ID          int64     `json:"id"`
	Tenant      TenantDTO `json:"tenant"`
	DeletedDate string    `json:"deleted_date"`
	Reason      string    `json:"reason"`
}

type DetectMoveoutsResponse struct {
	MovedOut []int64 `json:"moved_out"`
}

func toTenantDTO(t property.Tenant) TenantDTO {
	return TenantDTO{
		ID:               int64(t.ID),
		Name:             t.Name,
		Contact:          t.Contact,
		UnitID:           idPtr(t.UnitID),
		Type:             string(t.Type),
		MoveIn:           datePtr(t.MoveIn),
		MoveOut:          datePtr(t.MoveOut),
		Status:           string(t.Status),
		GuardianName:     t.GuardianName,
		GuardianContact:  t.GuardianContact,
		GuardianRelation: t.GuardianRelation,
		EmergencyContact: t.EmergencyContact,
		AdvancePaid:      t.AdvancePaid,
		DepositPaid:      t.DepositPaid,
	}
}

func toDeletedDTO(d property.DeletedTenant) DeletedTenantDTO {
	return DeletedTenantDTO{
		ID:          int64(d.ID),
		Tenant:      toTenantDTO(d.Tenant),
		DeletedDate: d.DeletedDate.String(),
		Reason:      d.Reason,
	}
}

// =============================================================================
// MOVE-OUT
// =============================================================================

type MoveOutRequest struct {
	Date *string `json:"date"`
	// InspectionPassed is the operator's attestation; it is required.
	InspectionPassed *bool `json:"inspection_passed"`
}

type MoveOutResponse struct {
	TenantID         int64           `json:"tenant_id"`
	MoveOutDate      string          `json:"move_out_date"`
	DaysStayed       *int            `json:"days_stayed"`
	HasUnpaid        bool            `json:"has_unpaid"`
	NoticeOK         bool            `json:"notice_ok"`
	InspectionPassed bool            `json:"inspection_passed"`
	RefundEligible   bool            `json:"refund_eligible"`
	Refunded         bool            `json:"refunded"`
	RefundedAmount   decimal.Decimal `json:"refunded_amount"`
	RefundPaymentID  *int64          `json:"refund_payment_id"`
	Reasons          []string        `json:"reasons"`
}

func toMoveOutResponse(o moveout.Outcome) MoveOutResponse {
	resp := MoveOutResponse{
		TenantID:         int64(o.TenantID),
		MoveOutDate:      o.MoveOutDate.String(),
		DaysStayed:       o.DaysStayed,
		HasUnpaid:        o.HasUnpaid,
		NoticeOK:         o.NoticeOK,
		InspectionPassed: o.InspectionPassed,
		RefundEligible:   o.RefundEligible,
		Refunded:         o.Refunded(),
		RefundedAmount:   o.RefundedAmount,
		Reasons:          o.Reasons,
	}
	if resp.Reasons == nil {
		resp.Reasons = []string{}
	}
	if o.Refunded() {
		id := int64(o.RefundPaymentID)
		resp.RefundPaymentID = &id
	}
	return resp
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID          int64           `json:"id"`
	TenantID    int64           `json:"tenant_id"`
	Rent        decimal.Decimal `json:"rent"`
	Electricity decimal.Decimal `json:"electricity"`
	Water       decimal.Decimal `json:"water"`
	Total       decimal.Decimal `json:"total"`
	DatePaid    string          `json:"date_paid"`
	Status      string          `json:"status"`
	Note        string          `json:"note,omitempty"`
}

type CreatePaymentRequest struct {
	TenantID    int64           `json:"tenant_id"`
	Rent        decimal.Decimal `json:"rent"`
	Electricity decimal.Decimal `json:"electricity"`
	Water       decimal.Decimal `json:"water"`
	DatePaid    *string         `json:"date_paid"`
	Status      string          `json:"status"`
	Note        string          `json:"note"`
}

type OverdueDTO struct {
	TenantID  int64            `json:"tenant_id"`
	Name      string           `json:"name"`
	PaymentID *int64           `json:"payment_id"`
	Total     *decimal.Decimal `json:"total"`
	DatePaid  *string          `json:"date_paid"`
	Status    string           `json:"status"`
}

type SummaryDTO struct {
	Days  int             `json:"days"`
	Since string          `json:"since"`
	Until string          `json:"until"`
	Total decimal.Decimal `json:"total"`
}

func toPaymentDTO(p property.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          int64(p.ID),
		TenantID:    int64(p.TenantID),
		Rent:        p.Rent,
		Electricity: p.Electricity,
		Water:       p.Water,
		Total:       p.Total(),
		DatePaid:    p.DatePaid.String(),
		Status:      string(p.Status),
		Note:        p.Note,
	}
}

func toOverdueDTO(e billing.OverdueEntry) OverdueDTO {
	dto := OverdueDTO{
		TenantID: int64(e.TenantID),
		Name:     e.Name,
		Total:    e.Total,
		DatePaid: datePtr(e.DatePaid),
		Status:   e.Status,
	}
	if e.PaymentID != 0 {
		id := int64(e.PaymentID)
		dto.PaymentID = &id
	}
	return dto
}

func toSummaryDTO(s report.Summary) SummaryDTO {
	return SummaryDTO{Days: s.Days, Since: s.Since.String(), Until: s.Until.String(), Total: s.Total}
}

// =============================================================================
// MAINTENANCE
// =============================================================================

type MaintenanceDTO struct {
	ID            int64           `json:"id"`
	TenantID      *int64          `json:"tenant_id"`
	Description   string          `json:"description"`
	Priority      string          `json:"priority"`
	DateRequested string          `json:"date_requested"`
	Status        string          `json:"status"`
	AssignedStaff *int64          `json:"assigned_staff"`
	Fee           decimal.Decimal `json:"fee"`
}

type CreateMaintenanceRequest struct {
	TenantID    *int64          `json:"tenant_id"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Fee         decimal.Decimal `json:"fee"`
}

type MaintenanceStatusRequest struct {
	Status string `json:"status"`
}

type AssignStaffRequest struct {
	StaffID *int64 `json:"staff_id"`
}

type StaffDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type CreateStaffRequest struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Contact string `json:"contact"`
}

func toMaintenanceDTO(r property.MaintenanceRequest) MaintenanceDTO {
	return MaintenanceDTO{
		ID:            int64(r.ID),
		TenantID:      idPtr(r.TenantID),
		Description:   r.Description,
		Priority:      string(r.Priority),
		DateRequested: r.DateRequested.String(),
		Status:        string(r.Status),
		AssignedStaff: idPtr(r.AssignedStaff),
		Fee:           r.Fee,
	}
}

func toStaffDTO(s property.Staff) StaffDTO {
	return StaffDTO{ID: int64(s.ID), Name: s.Name, Role: s.Role, Contact: s.Contact}
}

// =============================================================================
// REPORTS & ADMIN
// =============================================================================

type ReportDTO struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	GeneratedDate string `json:"generated_date"`
	FilePath      string `json:"file_path,omitempty"`
}

type VerifyResponse struct {
	OK    bool   `json:"ok"`
	Units int    `json:"units"`
	Error string `json:"error,omitempty"`
}

func toReportDTO(r property.Report) ReportDTO {
	return ReportDTO{ID: int64(r.ID), Type: r.Type, GeneratedDate: r.GeneratedDate.String(), FilePath: r.FilePath}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func idPtr[T ~int64](id *T) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func datePtr(d *property.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
