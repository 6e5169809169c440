package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"rentexpress/internal/access"
	"rentexpress/internal/models"
	"rentexpress/internal/util"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportService flattens a landlord's charges and payments into a ledger.
type ExportService struct {
	base
}

// LedgerRow is one line of the exported ledger.
type LedgerRow struct {
	Date        string
	Type        string
	ID          string
	LeaseID     string
	Description string
	Category    string
	Amount      decimal.Decimal
	Status      string
}

var ledgerHeader = []string{"Date", "Type", "ID", "Lease", "Description", "Category", "Amount", "Status"}

func (r LedgerRow) record() []string {
	return []string{r.Date, r.Type, r.ID, r.LeaseID, textCell(r.Description), textCell(r.Category), r.Amount.StringFixed(2), r.Status}
}

// textCell quotes free text that a spreadsheet would evaluate as a formula.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// Ledger returns charges and payments in the landlord's scope, newest first.
func (s *ExportService) Ledger(ctx context.Context, a access.Actor) ([]LedgerRow, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return nil, err
	}
	charges, err := (&ChargeService{base: s.base}).List(ctx, a)
	if err != nil {
		return nil, err
	}
	payments, err := (&PaymentService{base: s.base}).List(ctx, a)
	if err != nil {
		return nil, err
	}

	rows := make([]LedgerRow, 0, len(charges)+len(payments))
	for _, c := range charges {
		rows = append(rows, LedgerRow{
			Date:        c.ChargeDate,
			Type:        "charge",
			ID:          c.ID,
			LeaseID:     c.LeaseID,
			Description: c.Description,
			Category:    c.Category,
			Amount:      c.Amount,
			Status:      string(c.Status),
		})
	}
	for _, p := range payments {
		rows = append(rows, LedgerRow{
			Date:        p.Date.Format(util.DateLayout),
			Type:        "payment",
			ID:          p.ID,
			LeaseID:     p.LeaseID,
			Description: "Payment (" + p.Method + ")",
			Category:    "payment",
			Amount:      p.Amount.Neg(),
			Status:      string(p.Status),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
	return rows, nil
}

// WriteCSV writes rows with a UTF-8 BOM so spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, rows []LedgerRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const ledgerSheet = "Ledger"

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []LedgerRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	for i, h := range ledgerHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ledgerSheet, cell, h); err != nil {
			return err
		}
	}
	for idx, r := range rows {
		row := idx + 2
		for col, v := range r.record() {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			var value any = v
			if col == 6 {
				value = r.Amount.InexactFloat64()
			}
			if err := f.SetCellValue(ledgerSheet, cell, value); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(ledgerSheet, "A", "A", 12)
	_ = f.SetColWidth(ledgerSheet, "B", "B", 10)
	_ = f.SetColWidth(ledgerSheet, "C", "D", 38)
	_ = f.SetColWidth(ledgerSheet, "E", "E", 30)
	_ = f.SetColWidth(ledgerSheet, "F", "H", 12)

	return f.Write(w)
}
