// Package export writes the derived ledger and insight tables to an Excel
// workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
)

// Sheet names.
const (
	SheetSummary    = "Summary"
	SheetLedger     = "Ledger"
	SheetTopItems   = "Top Items"
	SheetTopPlayers = "Top Players"
	SheetCategories = "Categories"
)

// timestampLayout is used for ledger timestamp cells.
const timestampLayout = "2006-01-02 15:04:05"

// Built-in excelize number formats.
const (
	numFmtThousands = 3  // #,##0
	numFmtMoney     = 4  // #,##0.00
	numFmtPercent   = 10 // 0.00%
)

// Report is the content of one exported workbook.
type Report struct {
	GeneratedAt time.Time
	Source      string
	State       analytics.ViewState
	Ledger      []model.Transaction // filtered and sorted
	Insights    analytics.Insights
	Location    *time.Location
}

type styles struct {
	header  int
	money   int
	count   int
	percent int
}

// Build creates the workbook for report. The caller must Close the file.
func Build(report Report) (*excelize.File, error) {
	if report.Location == nil {
		report.Location = time.Local
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		sheet string
		write func(*excelize.File, Report, styles) error
	}{
		{SheetSummary, writeSummary},
		{SheetLedger, writeLedger},
		{SheetTopItems, writeTopItems},
		{SheetTopPlayers, writeTopPlayers},
		{SheetCategories, writeCategories},
	}
	for _, step := range steps {
		if step.sheet != SheetSummary {
			if _, err := f.NewSheet(step.sheet); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to create sheet %s: %w", step.sheet, err)
			}
		}
		if err := step.write(f, report, st); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", step.sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, report Report) error {
	f, err := Build(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save builds the workbook and saves it to path.
func Save(path string, report Report) error {
	f, err := Build(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	}); err != nil {
		return st, fmt.Errorf("failed to create header style: %w", err)
	}
	if st.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMoney}); err != nil {
		return st, fmt.Errorf("failed to create money style: %w", err)
	}
	if st.count, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return st, fmt.Errorf("failed to create count style: %w", err)
	}
	if st.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return st, fmt.Errorf("failed to create percent style: %w", err)
	}
	return st, nil
}

func writeSummary(f *excelize.File, report Report, st styles) error {
	state := report.State
	search := state.Search
	if search == "" {
		search = "(none)"
	}
	typeFilter := string(state.TypeFilter)
	if typeFilter == "" {
		typeFilter = "All"
	}

	rows := [][]any{
		{"Generated", report.GeneratedAt.In(report.Location).Format(timestampLayout)},
		{"Source", report.Source},
		{"Time range", state.TimeRange.Label()},
		{"Search", search},
		{"Type", typeFilter},
		{"Sort", fmt.Sprintf("%s %s", state.SortColumn, state.SortDir)},
		{"Transactions", len(report.Ledger)},
	}
	if err := writeRows(f, SheetSummary, 1, rows); err != nil {
		return err
	}
	if err := f.SetColStyle(SheetSummary, "A", st.header); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

func writeLedger(f *excelize.File, report Report, st styles) error {
	header := []any{"Timestamp", "Player", "Type", "Item", "Category", "Amount", "Price", "Unit Price"}
	if err := writeHeader(f, SheetLedger, header, st); err != nil {
		return err
	}

	rows := make([][]any, 0, len(report.Ledger))
	for _, tx := range report.Ledger {
		ts := tx.RawTimestamp
		if tx.HasValidTimestamp() {
			ts = tx.Timestamp.In(report.Location).Format(timestampLayout)
		}
		var unit any = ""
		if u, ok := tx.UnitPrice(); ok {
			unit = u
		}
		rows = append(rows, []any{
			ts, tx.PlayerName, string(tx.Type), tx.Item, tx.CategoryOrUnknown(),
			tx.Amount, tx.Price, unit,
		})
	}
	if err := writeRows(f, SheetLedger, 2, rows); err != nil {
		return err
	}

	last := len(rows) + 1
	if err := styleColumn(f, SheetLedger, "F", last, st.count); err != nil {
		return err
	}
	if err := styleRange(f, SheetLedger, "G", "H", last, st.money); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetLedger, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetLedger, "B", "E", 18); err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := f.AutoFilter(SheetLedger, fmt.Sprintf("A1:H%d", last), nil); err != nil {
			return err
		}
	}
	return freezeHeader(f, SheetLedger)
}

func writeTopItems(f *excelize.File, report Report, st styles) error {
	if err := writeHeader(f, SheetTopItems, []any{"Rank", "Item", "Name", "Amount", "Volume"}, st); err != nil {
		return err
	}

	rows := make([][]any, 0, len(report.Insights.TopItems))
	for i, item := range report.Insights.TopItems {
		rows = append(rows, []any{i + 1, item.Item, common.PrettifyItem(item.Item), item.Count, item.Volume})
	}
	if err := writeRows(f, SheetTopItems, 2, rows); err != nil {
		return err
	}

	last := len(rows) + 1
	if err := styleColumn(f, SheetTopItems, "D", last, st.count); err != nil {
		return err
	}
	if err := styleColumn(f, SheetTopItems, "E", last, st.money); err != nil {
		return err
	}
	return freezeHeader(f, SheetTopItems)
}

func writeTopPlayers(f *excelize.File, report Report, st styles) error {
	if err := writeHeader(f, SheetTopPlayers, []any{"Rank", "Player", "Transactions", "Volume"}, st); err != nil {
		return err
	}

	rows := make([][]any, 0, len(report.Insights.TopPlayers))
	for i, p := range report.Insights.TopPlayers {
		rows = append(rows, []any{i + 1, p.Player, p.Count, p.Volume})
	}
	if err := writeRows(f, SheetTopPlayers, 2, rows); err != nil {
		return err
	}

	last := len(rows) + 1
	if err := styleColumn(f, SheetTopPlayers, "D", last, st.money); err != nil {
		return err
	}
	return freezeHeader(f, SheetTopPlayers)
}

func writeCategories(f *excelize.File, report Report, st styles) error {
	if err := writeHeader(f, SheetCategories, []any{"Category", "Transactions", "Share"}, st); err != nil {
		return err
	}

	rows := make([][]any, 0, len(report.Insights.Categories))
	for _, c := range report.Insights.Categories {
		// Excel percent formats expect a fraction.
		rows = append(rows, []any{c.Category, c.Count, c.Percent / 100})
	}
	if err := writeRows(f, SheetCategories, 2, rows); err != nil {
		return err
	}

	last := len(rows) + 1
	if err := styleColumn(f, SheetCategories, "C", last, st.percent); err != nil {
		return err
	}
	return freezeHeader(f, SheetCategories)
}

func writeHeader(f *excelize.File, sheet string, header []any, st styles) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return f.SetRowStyle(sheet, 1, 1, st.header)
}

func writeRows(f *excelize.File, sheet string, firstRow int, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func styleColumn(f *excelize.File, sheet, col string, lastRow, style int) error {
	return styleRange(f, sheet, col, col, lastRow, style)
}

func styleRange(f *excelize.File, sheet, fromCol, toCol string, lastRow, style int) error {
	if lastRow < 2 {
		return nil
	}
	return f.SetCellStyle(sheet, fromCol+"2", fmt.Sprintf("%s%d", toCol, lastRow), style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
