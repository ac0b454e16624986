/*
handlers.go - HTTP API handlers for the tenancy engine

PURPOSE:
  Exposes the tenancy engine via a JSON REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Units:
    GET    /api/units                     List units (by code)
    POST   /api/units                     Create unit
    GET    /api/units/available           Vacant units
    GET    /api/units/{id}                Unit details

  Tenants:
    GET    /api/tenants                   List live tenants (?unit_id=)
    POST   /api/tenants                   Create tenant
    GET    /api/tenants/{id}              Tenant details
    PATCH  /api/tenants/{id}              Partial update
    DELETE /api/tenants/{id}              Soft-delete (?reason=)
    POST   /api/tenants/{id}/assign       Move to another unit
    POST   /api/tenants/{id}/moveout      Move out + deposit refund rule
    POST   /api/tenants/detect-moveouts   Apply reached move-out dates

  Archive:
    GET    /api/tenants/deleted           Archival records, newest first
    POST   /api/tenants/deleted/{id}/restore
    DELETE /api/tenants/deleted/{id}      Purge permanently

  Payments:
    GET    /api/payments                  All rows, newest first (?tenant_id=)
    POST   /api/payments                  Record a payment
    GET    /api/payments/overdue          Overdue report (?days=)
    GET    /api/payments/summary          Income summary (?days=)
    GET    /api/payments/export           CSV download
    GET    /api/payments/export.xlsx      Spreadsheet download

  Maintenance:
    GET    /api/maintenance               Requests
    POST   /api/maintenance               Submit request
    POST   /api/maintenance/{id}/status   Overwrite status
    POST   /api/maintenance/{id}/assign   Assign staff

  Other:
    POST   /api/login                     Exchange credentials for a session token
    GET/POST /api/staff, GET /api/reports, GET /api/admin/verify

STATUS CURRENCY:
  There is no scheduler, so unit and tenant listings run DetectMoveouts
  before reading.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or wrong credentials (see server.go)
  - 404: Record not found
  - 409: Dorm capacity exceeded
  - 500: Invariant violations, internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup, middleware and authentication
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/tenancy-engine/auth"
	"github.com/warp/tenancy-engine/billing"
	"github.com/warp/tenancy-engine/maintenance"
	"github.com/warp/tenancy-engine/moveout"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/report"
	"github.com/warp/tenancy-engine/tenants"
	"github.com/warp/tenancy-engine/units"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  property.TxStore
	Rules  property.Rules
	Auth   *auth.Service
	Tokens *auth.Tokens

	Units       *units.Registry
	Tenants     *tenants.Ledger
	Billing     *billing.Engine
	MoveOuts    *moveout.Policy
	Maintenance *maintenance.Tracker
	Reports     *report.Service
}

// NewHandler wires every component onto the given store.
func NewHandler(store property.TxStore, credentials *auth.Service, tokens *auth.Tokens, clock property.Clock, rules property.Rules) *Handler {
	if clock == nil {
		clock = property.SystemClock{}
	}
	rules = rules.Normalize()
	return &Handler{
		Store:       store,
		Rules:       rules,
		Auth:        credentials,
		Tokens:      tokens,
		Units:       units.New(store, rules),
		Tenants:     tenants.NewLedger(store, clock, rules),
		Billing:     billing.NewEngine(store, clock),
		MoveOuts:    moveout.NewPolicy(store, clock, rules),
		Maintenance: maintenance.NewTracker(store, clock),
		Reports:     report.NewService(store, clock),
	}
}

// detectMoveouts brings statuses current before a read.
func (h *Handler) detectMoveouts(r *http.Request) error {
	moved, err := h.Tenants.DetectMoveouts(r.Context())
	if err != nil {
		return err
	}
	if len(moved) > 0 {
		log.Printf("Moved out %d tenant(s) whose move-out date was reached", len(moved))
	}
	return nil
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	if err := h.detectMoveouts(r); err != nil {
		writeDomainError(w, "Failed to refresh statuses", err)
		return
	}
	list, err := h.Units.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list units", err)
		return
	}
	dtos := make([]UnitDTO, 0, len(list))
	for _, u := range list {
		dto, err := h.unitDTO(r, u)
		if err != nil {
			writeDomainError(w, "Failed to list units", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListAvailableUnits(w http.ResponseWriter, r *http.Request) {
	if err := h.detectMoveouts(r); err != nil {
		writeDomainError(w, "Failed to refresh statuses", err)
		return
	}
	list, err := h.Units.Available(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list units", err)
		return
	}
	dtos := make([]UnitDTO, len(list))
	for i, u := range list {
		dtos[i] = toUnitDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid unit id", err)
		return
	}
	u, err := h.Units.Get(r.Context(), property.UnitID(id))
	if err != nil {
		writeDomainError(w, "Unit not found", err)
		return
	}
	dto, err := h.unitDTO(r, u)
	if err != nil {
		writeDomainError(w, "Failed to load unit", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Units.Create(r.Context(), req.Code, property.UnitType(req.Type), req.Price)
	if err != nil {
		writeDomainError(w, "Failed to create unit", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUnitDTO(u))
}

func (h *Handler) unitDTO(r *http.Request, u property.Unit) (UnitDTO, error) {
	dto := toUnitDTO(u)
	if u.IsDorm() {
		n, err := h.Units.CapacityUsed(r.Context(), u.ID)
		if err != nil {
			return UnitDTO{}, err
		}
		dto.Occupants = &n
	}
	return dto, nil
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	if err := h.detectMoveouts(r); err != nil {
		writeDomainError(w, "Failed to refresh statuses", err)
		return
	}

	var (
		list []property.Tenant
		err  error
	)
	if raw := r.URL.Query().Get("unit_id"); raw != "" {
		unitID, perr := parseID("unit_id", raw)
		if perr != nil {
			writeDomainError(w, "Invalid unit id", perr)
			return
		}
		list, err = h.Tenants.ListByUnit(r.Context(), property.UnitID(unitID))
	} else {
		list, err = h.Tenants.List(r.Context())
	}
	if err != nil {
		writeDomainError(w, "Failed to list tenants", err)
		return
	}

	dtos := make([]TenantDTO, len(list))
	for i, t := range list {
		dtos[i] = toTenantDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid tenant id", err)
		return
	}
	t, err := h.Tenants.Get(r.Context(), property.TenantID(id))
	if err != nil {
		writeDomainError(w, "Tenant not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(t))
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !decode(w, r, &req) {
		return
	}
	moveIn, err := parseDate("move_in", req.MoveIn)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}
	moveOut, err := parseDate("move_out", req.MoveOut)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}

	t := property.Tenant{
		Name:             req.Name,
		Contact:          req.Contact,
		Type:             property.UnitType(req.Type),
		MoveIn:           moveIn,
		MoveOut:          moveOut,
		Status:           property.TenantStatus(req.Status),
		GuardianName:     req.GuardianName,
		GuardianContact:  req.GuardianContact,
		GuardianRelation: req.GuardianRelation,
		EmergencyContact: req.EmergencyContact,
		AdvancePaid:      req.AdvancePaid,
		DepositPaid:      req.DepositPaid,
	}
	if req.UnitID != nil {
		unitID := property.UnitID(*req.UnitID)
		t.UnitID = &unitID
	}

	created, err := h.Tenants.Create(r.Context(), t)
	if err != nil {
		writeDomainError(w, "Failed to create tenant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTenantDTO(created))
}

func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid tenant id", err)
		return
	}
	var req UpdateTenantRequest
	if !decode(w, r, &req) {
		return
	}

	fields := tenants.Update{
		Name:             req.Name,
		Contact:          req.Contact,
		ClearMoveOut:     req.ClearMoveOut,
		GuardianName:     req.GuardianName,
		GuardianContact:  req.GuardianContact,
		GuardianRelation: req.GuardianRelation,
		EmergencyContact: req.EmergencyContact,
		AdvancePaid:      req.AdvancePaid,
		DepositPaid:      req.DepositPaid,
	}
	if req.Type != nil {
		v := property.UnitType(*req.Type)
		fields.Type = &v
	}
	if req.Status != nil {
		v := property.TenantStatus(*req.Status)
		fields.Status = &v
	}
	if fields.MoveIn, err = parseDate("move_in", req.MoveIn); err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}
	if fields.MoveOut, err = parseDate("move_out", req.MoveOut); err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}

	updated, err := h.Tenants.Update(r.Context(), property.TenantID(id), fields)
	if err != nil {
		writeDomainError(w, "Failed to update tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(updated))
}

func (h *Handler) AssignTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid tenant id", err)
		return
	}
	var req AssignRequest
	if !decode(w, r, &req) {
		return
	}
	var unitID *property.UnitID
	if req.UnitID != nil {
		v := property.UnitID(*req.UnitID)
		unitID = &v
	}
	updated, err := h.Tenants.Assign(r.Context(), property.TenantID(id), unitID)
	if err != nil {
		writeDomainError(w, "Failed to assign tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(updated))
}

func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid tenant id", err)
		return
	}
	archived, err := h.Tenants.SoftDelete(r.Context(), property.TenantID(id), r.URL.Query().Get("reason"))
	if err != nil {
		writeDomainError(w, "Failed to delete tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, toDeletedDTO(archived))
}

func (h *Handler) MoveOutTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid tenant id", err)
		return
	}
	var req MoveOutRequest
	if !decode(w, r, &req) {
		return
	}
	if req.InspectionPassed == nil {
		writeDomainError(w, "Invalid request", property.Invalid("inspection_passed", "inspection attestation required"))
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}

	outcome, err := h.MoveOuts.MoveOut(r.Context(), property.TenantID(id), date, moveout.Attestation(*req.InspectionPassed))
	if err != nil {
		writeDomainError(w, "Failed to move out tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, toMoveOutResponse(outcome))
}

func (h *Handler) DetectMoveouts(w http.ResponseWriter, r *http.Request) {
	moved, err := h.Tenants.DetectMoveouts(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to detect move-outs", err)
		return
	}
	resp := DetectMoveoutsResponse{MovedOut: make([]int64, len(moved))}
	for i, id := range moved {
		resp.MovedOut[i] = int64(id)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// ARCHIVE HANDLERS
// =============================================================================

func (h *Handler) ListDeletedTenants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Tenants.ListDeleted(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list deleted tenants", err)
		return
	}
	dtos := make([]DeletedTenantDTO, len(list))
	for i, d := range list {
		dtos[i] = toDeletedDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) RestoreTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid archive id", err)
		return
	}
	restored, err := h.Tenants.Restore(r.Context(), property.DeletedID(id))
	if err != nil {
		writeDomainError(w, "Failed to restore tenant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTenantDTO(restored))
}

func (h *Handler) PurgeTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid archive id", err)
		return
	}
	if err := h.Tenants.Purge(r.Context(), property.DeletedID(id)); err != nil {
		writeDomainError(w, "Failed to purge tenant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		list []property.Payment
		err  error
	)
	if raw := r.URL.Query().Get("tenant_id"); raw != "" {
		tenantID, perr := parseID("tenant_id", raw)
		if perr != nil {
			writeDomainError(w, "Invalid tenant id", perr)
			return
		}
		list, err = h.Billing.PaymentsFor(r.Context(), property.TenantID(tenantID))
	} else {
		list, err = h.Billing.AllPayments(r.Context())
	}
	if err != nil {
		writeDomainError(w, "Failed to list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(list))
	for i, p := range list {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !decode(w, r, &req) {
		return
	}
	datePaid, err := parseDate("date_paid", req.DatePaid)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}
	p, err := h.Billing.RecordPayment(r.Context(), billing.PaymentInput{
		TenantID:    property.TenantID(req.TenantID),
		Rent:        req.Rent,
		Electricity: req.Electricity,
		Water:       req.Water,
		DatePaid:    datePaid,
		Status:      property.PaymentStatus(req.Status),
		Note:        req.Note,
	})
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, h.Rules.OverdueDays)
	if err != nil {
		writeDomainError(w, "Invalid days", err)
		return
	}
	entries, err := h.Billing.OverdueList(r.Context(), days)
	if err != nil {
		writeDomainError(w, "Failed to list overdue payments", err)
		return
	}
	dtos := make([]OverdueDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toOverdueDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) IncomeSummary(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, 30)
	if err != nil {
		writeDomainError(w, "Invalid days", err)
		return
	}
	summary, err := h.Reports.IncomeSummary(r.Context(), days)
	if err != nil {
		writeDomainError(w, "Failed to compute income", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	if err := h.Reports.ExportPayments(r.Context(), w); err != nil {
		// Headers may already be out; the log line is all that's left.
		log.Printf("Payments export failed: %v", err)
		return
	}
	if _, err := h.Reports.Log(r.Context(), report.TypePaymentsCSV, "download"); err != nil {
		log.Printf("Warning: failed to log export: %v", err)
	}
}

func (h *Handler) ExportPaymentsXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.xlsx"`)
	if err := h.Reports.ExportPaymentsXLSX(r.Context(), w); err != nil {
		log.Printf("Payments export failed: %v", err)
		return
	}
	if _, err := h.Reports.Log(r.Context(), report.TypePaymentsXLSX, "download"); err != nil {
		log.Printf("Warning: failed to log export: %v", err)
	}
}

// =============================================================================
// MAINTENANCE HANDLERS
// =============================================================================

func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	list, err := h.Maintenance.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list maintenance requests", err)
		return
	}
	dtos := make([]MaintenanceDTO, len(list))
	for i, m := range list {
		dtos[i] = toMaintenanceDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req CreateMaintenanceRequest
	if !decode(w, r, &req) {
		return
	}
	var tenantID *property.TenantID
	if req.TenantID != nil {
		v := property.TenantID(*req.TenantID)
		tenantID = &v
	}
	m, err := h.Maintenance.Submit(r.Context(), tenantID, req.Description, property.Priority(req.Priority), req.Fee)
	if err != nil {
		writeDomainError(w, "Failed to submit maintenance request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaintenanceDTO(m))
}

func (h *Handler) UpdateMaintenanceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid request id", err)
		return
	}
	var req MaintenanceStatusRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Maintenance.UpdateStatus(r.Context(), property.RequestID(id), property.MaintenanceStatus(req.Status))
	if err != nil {
		writeDomainError(w, "Failed to update maintenance request", err)
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceDTO(m))
}

func (h *Handler) AssignMaintenanceStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, "Invalid request id", err)
		return
	}
	var req AssignStaffRequest
	if !decode(w, r, &req) {
		return
	}
	var staffID *property.StaffID
	if req.StaffID != nil {
		v := property.StaffID(*req.StaffID)
		staffID = &v
	}
	m, err := h.Maintenance.AssignStaff(r.Context(), property.RequestID(id), staffID)
	if err != nil {
		writeDomainError(w, "Failed to assign staff", err)
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceDTO(m))
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	list, err := h.Maintenance.ListStaff(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list staff", err)
		return
	}
	dtos := make([]StaffDTO, len(list))
	for i, s := range list {
		dtos[i] = toStaffDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Maintenance.AddStaff(r.Context(), property.Staff{Name: req.Name, Role: req.Role, Contact: req.Contact})
	if err != nil {
		writeDomainError(w, "Failed to add staff", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffDTO(s))
}

// =============================================================================
// REPORTS & ADMIN
// =============================================================================

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.Reports.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list reports", err)
		return
	}
	dtos := make([]ReportDTO, len(list))
	for i, rep := range list {
		dtos[i] = toReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Login verifies the operator's password and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	if h.Auth == nil || h.Tokens == nil {
		writeError(w, http.StatusServiceUnavailable, "Login not configured", nil)
		return
	}
	if err := h.Auth.Verify(r.Context(), req.Username, req.Password); err != nil {
		writeDomainError(w, "Invalid credentials", err)
		return
	}
	session, err := h.Tokens.Issue(req.Username)
	if err != nil {
		writeDomainError(w, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// VerifyInvariants checks every unit's stored status against its tenants.
func (h *Handler) VerifyInvariants(w http.ResponseWriter, r *http.Request) {
	all, err := h.Units.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list units", err)
		return
	}
	if err := h.Units.Verify(r.Context()); err != nil {
		if !property.IsFatal(err) {
			writeDomainError(w, "Failed to verify units", err)
			return
		}
		log.Printf("Invariant violation: %v", err)
		writeJSON(w, http.StatusInternalServerError, VerifyResponse{OK: false, Units: len(all), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{OK: true, Units: len(all)})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, property.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, property.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, property.ErrCapacityExceeded):
		status, code = http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, property.ErrInvariantViolation):
		code = "invariant_violation"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "unauthorized"
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, chi.URLParam(r, name))
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, property.Invalid(field, fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

func parseDate(field string, raw *string) (*property.Date, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := property.ParseDate(*raw)
	if err != nil {
		return nil, property.Invalid(field, fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", *raw))
	}
	return &d, nil
}

func queryDays(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, property.Invalid("days", fmt.Sprintf("%q is not a non-negative integer", raw))
	}
	return days, nil
}
