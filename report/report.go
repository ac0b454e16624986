/*
Package report produces operator-facing exports from the billing ledger.

KEY OPERATIONS:
  WritePaymentsCSV:   Payment rows as CSV, one line per row
  ExportPayments:     WritePaymentsCSV over every row, newest first
  ExportPaymentsXLSX: The same rows as a single-sheet workbook
  IncomeSummary:      Income over the last N days (billing.SumSince)
  Log / List:         The log of generated artifacts

Payments survive tenant soft-delete, so tenant names are resolved from the
live ledger first and the archive second.
*/
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/tenancy-engine/billing"
	"github.com/warp/tenancy-engine/property"
	"github.com/xuri/excelize/v2"
)

// Report types recorded in the log.
const (
	TypePaymentsCSV   = "payments_csv"
	TypePaymentsXLSX  = "payments_xlsx"
	TypeIncomeSummary = "income_summary"
)

// CSVHeader is the first line of every payments export.
var CSVHeader = []string{"payment_id", "tenant", "rent", "electricity", "water", "total", "date_paid", "status", "note"}

type Service struct {
	store   property.Store
	clock   property.Clock
	billing *billing.Engine
}

func NewService(store property.Store, clock property.Clock) *Service {
	if clock == nil {
		clock = property.SystemClock{}
	}
	return &Service{store: store, clock: clock, billing: billing.NewEngine(store, clock)}
}

// =============================================================================
// PAYMENTS CSV
// =============================================================================

// WritePaymentsCSV writes payments in the given order. Unknown tenants are
// written as "#<id>".
func WritePaymentsCSV(w io.Writer, payments []property.Payment, names map[property.TenantID]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range payments {
		record := []string{
			strconv.FormatInt(int64(p.ID), 10),
			tenantLabel(p.TenantID, names),
			p.Rent.StringFixed(2),
			p.Electricity.StringFixed(2),
			p.Water.StringFixed(2),
			p.Total().StringFixed(2),
			p.DatePaid.String(),
			string(p.Status),
			p.Note,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPayments writes every payment row, newest first.
func (s *Service) ExportPayments(ctx context.Context, w io.Writer) error {
	payments, err := s.billing.AllPayments(ctx)
	if err != nil {
		return err
	}
	names, err := s.tenantNames(ctx)
	if err != nil {
		return err
	}
	return WritePaymentsCSV(w, payments, names)
}

// =============================================================================
// PAYMENTS SPREADSHEET
// =============================================================================

// PaymentsSheet is the worksheet name used by WritePaymentsXLSX.
const PaymentsSheet = "Payments"

// WritePaymentsXLSX writes the same columns as WritePaymentsCSV to a single
// worksheet. Money columns are numeric cells so they can be summed.
func WritePaymentsXLSX(w io.Writer, payments []property.Payment, names map[property.TenantID]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PaymentsSheet); err != nil {
		return err
	}
	for i, header := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(PaymentsSheet, cell, header); err != nil {
			return err
		}
	}

	for i, p := range payments {
		row := []any{
			int64(p.ID),
			tenantLabel(p.TenantID, names),
			p.Rent.InexactFloat64(),
			p.Electricity.InexactFloat64(),
			p.Water.InexactFloat64(),
			p.Total().InexactFloat64(),
			p.DatePaid.String(),
			string(p.Status),
			p.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(PaymentsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ExportPaymentsXLSX writes every payment row, newest first, as a workbook.
func (s *Service) ExportPaymentsXLSX(ctx context.Context, w io.Writer) error {
	payments, err := s.billing.AllPayments(ctx)
	if err != nil {
		return err
	}
	names, err := s.tenantNames(ctx)
	if err != nil {
		return err
	}
	return WritePaymentsXLSX(w, payments, names)
}

func tenantLabel(id property.TenantID, names map[property.TenantID]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "#" + strconv.FormatInt(int64(id), 10)
}

func (s *Service) tenantNames(ctx context.Context) (map[property.TenantID]string, error) {
	names := make(map[property.TenantID]string)
	archived, err := s.store.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range archived {
		names[d.Tenant.ID] = d.Tenant.Name
	}
	live, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range live {
		names[t.ID] = t.Name
	}
	return names, nil
}

// =============================================================================
// INCOME SUMMARY
// =============================================================================

type Summary struct {
	Days  int
	Since property.Date
	Until property.Date
	Total decimal.Decimal
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Income summary (last %d days)\n", s.Days)
	fmt.Fprintf(&b, "Period: %s to %s\n", s.Since, s.Until)
	fmt.Fprintf(&b, "Total:  %s\n", s.Total.StringFixed(2))
	return b.String()
}

func (s *Service) IncomeSummary(ctx context.Context, days int) (Summary, error) {
	if days < 0 {
		return Summary{}, property.Invalid("days", "must not be negative")
	}
	total, err := s.billing.SumSince(ctx, days)
	if err != nil {
		return Summary{}, err
	}
	today := s.clock.Today()
	return Summary{Days: days, Since: today.AddDays(-days), Until: today, Total: total}, nil
}

// =============================================================================
// REPORT LOG
// =============================================================================

// Log records a generated artifact, dated today.
func (s *Service) Log(ctx context.Context, reportType, path string) (property.Report, error) {
	reportType = strings.TrimSpace(reportType)
	if reportType == "" {
		return property.Report{}, property.Invalid("type", "report type required")
	}
	r := property.Report{Type: reportType, GeneratedDate: s.clock.Today(), FilePath: path}
	id, err := s.store.InsertReport(ctx, r)
	if err != nil {
		return property.Report{}, fmt.Errorf("failed to log report: %w", err)
	}
	r.ID = id
	return r, nil
}

// List returns logged reports, newest first.
func (s *Service) List(ctx context.Context) ([]property.Report, error) {
	out, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
