// Package export renders the flat booking rows as CSV and XLSX workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

const SheetName = "Ramadan 2026 Sponsorships"

type column struct {
	header string
	width  float64
	money  bool
}

var columns = []column{
	{"Calendar Date", 15, false},
	{"Ramadan Date", 18, false},
	{"Day of Week", 12, false},
	{"Sponsor Names", 25, false},
	{"Contact Number", 18, false},
	{"Contact Email", 25, false},
	{"Organization", 20, false},
	{"Food Amount", 12, true},
	{"Cleaning Amount", 15, true},
	{"Total Cost", 12, true},
	{"Paid (Y/N/P)", 12, false},
	{"Amount Paid", 12, true},
	{"Balance", 12, true},
	{"Food Vendor Name", 20, false},
	{"Food Vendor Contact Name", 22, false},
	{"Food Vendor Number", 18, false},
	{"Method of Payment", 18, false},
	{"Check Number", 15, false},
	{"Reference", 18, false},
	{"Comment", 30, false},
	{"Booking Status", 15, false},
	{"Approval Status", 15, false},
}

// Headers returns the column titles in output order.
func Headers() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.header
	}
	return h
}

// PaidFlag maps a payment status to the Y/N/P notation used by the treasurer.
func PaidFlag(s models.PaymentStatus) string {
	switch s {
	case models.PaymentCompleted:
		return "Y"
	case models.PaymentPartial:
		return "P"
	}
	return "N"
}

func MethodLabel(m *models.PaymentMethod) string {
	if m == nil {
		return ""
	}
	switch *m {
	case models.MethodCheck:
		return "Ch"
	case models.MethodCash:
		return "Cash"
	case models.MethodZelle:
		return "Zelle"
	}
	return ""
}

// Comment prefers the admin comment and falls back to the sponsor's notes.
func Comment(r models.ExportRow) string {
	if c := str(r.AdminComment); c != "" {
		return c
	}
	return str(r.SpecialNotes)
}

// cells returns one row; money columns hold float64, the rest strings.
func cells(r models.ExportRow) []any {
	approval := ""
	if r.ApprovalStatus != nil {
		approval = string(*r.ApprovalStatus)
	}
	return []any{
		r.Date,
		r.ReligiousDate,
		r.Weekday,
		str(r.SponsorName),
		str(r.SponsorPhone),
		str(r.SponsorEmail),
		str(r.SponsorOrganization),
		r.FoodAmount,
		r.CleaningAmount,
		r.TotalAmount,
		PaidFlag(r.PaymentStatus),
		r.AmountPaid,
		r.Balance,
		str(r.VendorName),
		str(r.VendorContactName),
		str(r.VendorPhone),
		MethodLabel(r.PaymentMethod),
		str(r.CheckNumber),
		str(r.ExternalReference),
		Comment(r),
		string(r.BookingStatus),
		approval,
	}
}

// WriteCSV writes a header line followed by one line per row. Zero amounts
// are left blank except Amount Paid.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, r := range rows {
		for i, v := range cells(r) {
			switch x := v.(type) {
			case float64:
				if x == 0 && columns[i].header != "Amount Paid" {
					record[i] = ""
				} else {
					record[i] = strconv.FormatFloat(x, 'f', -1, 64)
				}
			case string:
				record[i] = x
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with a styled header row and
// currency formatting on the money columns.
func WriteXLSX(w io.Writer, rows []models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#0D6EFD"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	moneyFmt := "$#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return err
	}

	for i, c := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return err
		}
		if c.money {
			if err := f.SetColStyle(SheetName, name, moneyStyle); err != nil {
				return err
			}
		}
	}

	header := make([]any, len(columns))
	for i, h := range Headers() {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	for i, r := range rows {
		row := cells(r)
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// Filename returns the download name for an export taken at t.
func Filename(ext string, t time.Time) string {
	return fmt.Sprintf("hmcc-ramadan-bookings-%s.%s", t.UTC().Format(time.DateOnly), ext)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
