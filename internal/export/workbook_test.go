package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 15, 40, 0, 0, time.UTC)

func sampleReport(t *testing.T, state analytics.ViewState) Report {
	t.Helper()

	snap := analytics.NewStore().Replace(testutil.SampleTransactions(testNow), testNow)
	view := analytics.NewEngine(5).Derive(snap, state, testNow)
	return Report{
		GeneratedAt: testNow,
		Source:      "demo",
		State:       state,
		Ledger:      view.Sorted,
		Insights:    view.Insights,
		Location:    time.UTC,
	}
}

func openWorkbook(t *testing.T, report Report) *excelize.File {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWrite_Sheets(t *testing.T) {
	f := openWorkbook(t, sampleReport(t, analytics.DefaultViewState(50)))

	assert.Equal(t,
		[]string{SheetSummary, SheetLedger, SheetTopItems, SheetTopPlayers, SheetCategories},
		f.GetSheetList())
}

func TestWrite_Ledger(t *testing.T) {
	f := openWorkbook(t, sampleReport(t, analytics.DefaultViewState(50)))

	rows, err := f.GetRows(SheetLedger)
	require.NoError(t, err)
	require.Len(t, rows, 8, "header plus seven transactions")

	assert.Equal(t, []string{"Timestamp", "Player", "Type", "Item", "Category", "Amount", "Price", "Unit Price"}, rows[0])
	// Newest first: Alice's OAK_LOG buy five minutes ago.
	assert.Equal(t, "2024-06-01 15:35:00", rows[1][0])
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "BUY", rows[1][2])
	assert.Equal(t, "OAK_LOG", rows[1][3])

	// Erin's WHEAT sale has no category.
	last := rows[len(rows)-1]
	assert.Equal(t, "Erin", last[1])
	assert.Equal(t, "Unknown", last[4])
}

func TestWrite_FilteredLedger(t *testing.T) {
	state := analytics.DefaultViewState(50).WithSearch("ali").WithTimeRange(analytics.RangeLastDay)
	f := openWorkbook(t, sampleReport(t, state))

	rows, err := f.GetRows(SheetLedger)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "alice_alt", rows[2][1])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	values := make(map[string]string)
	for _, row := range summary {
		require.Len(t, row, 2)
		values[row[0]] = row[1]
	}
	assert.Equal(t, "ali", values["Search"])
	assert.Equal(t, "demo", values["Source"])
	assert.Equal(t, "2", values["Transactions"])
}

func TestWrite_Insights(t *testing.T) {
	f := openWorkbook(t, sampleReport(t, analytics.DefaultViewState(50)))

	items, err := f.GetRows(SheetTopItems)
	require.NoError(t, err)
	require.Len(t, items, 6, "header plus top five items")
	assert.Equal(t, "ENCHANTED_BOOK", items[1][1])
	assert.Equal(t, "Enchanted Book", items[1][2])

	players, err := f.GetRows(SheetTopPlayers)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(players), 2)
	assert.Equal(t, "Bob", players[1][1])
	assert.Equal(t, "2", players[1][2])

	categories, err := f.GetRows(SheetCategories)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(categories), 2)
	assert.Equal(t, []string{"Category", "Transactions", "Share"}, categories[0])

	raw, err := f.GetCellValue(SheetCategories, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestWrite_EmptyReport(t *testing.T) {
	state := analytics.DefaultViewState(50).WithSearch("nobody")
	f := openWorkbook(t, sampleReport(t, state))

	rows, err := f.GetRows(SheetLedger)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	items, err := f.GetRows(SheetTopItems)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, Save(path, sampleReport(t, analytics.DefaultViewState(50))))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), SheetLedger)
}
