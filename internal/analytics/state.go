package analytics

import (
	"strings"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// DefaultPageSize is the number of ledger rows per page.
const DefaultPageSize = 50

// ViewState is the complete set of user-selected view criteria.
// It is a value type: every With* method returns a modified copy.
type ViewState struct {
	Search     string
	TypeFilter model.TransactionType
	TimeRange  TimeRange
	SortColumn SortColumn
	SortDir    SortDirection
	Page       int
	PageSize   int
}

// DefaultViewState returns the initial state: all time, newest first, page 1.
func DefaultViewState(pageSize int) ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return ViewState{
		TimeRange:  RangeAll,
		SortColumn: SortByTimestamp,
		SortDir:    Descending,
		Page:       1,
		PageSize:   pageSize,
	}
}

// WithTimeRange selects a time range and resets to the first page.
func (s ViewState) WithTimeRange(r TimeRange) ViewState {
	s.TimeRange = r
	s.Page = 1
	return s
}

// WithSearch sets the search text and resets to the first page.
func (s ViewState) WithSearch(search string) ViewState {
	s.Search = strings.TrimSpace(search)
	s.Page = 1
	return s
}

// WithTypeFilter sets the type filter and resets to the first page.
func (s ViewState) WithTypeFilter(t model.TransactionType) ViewState {
	s.TypeFilter = t
	s.Page = 1
	return s
}

// WithSort applies a column header click: the current column flips its
// direction, a new column starts descending.
func (s ViewState) WithSort(column SortColumn) ViewState {
	if s.SortColumn == column {
		s.SortDir = s.SortDir.Reverse()
	} else {
		s.SortColumn = column
		s.SortDir = Descending
	}
	s.Page = 1
	return s
}

// WithSortOrder sets column and direction explicitly.
func (s ViewState) WithSortOrder(column SortColumn, dir SortDirection) ViewState {
	s.SortColumn = column
	s.SortDir = dir
	s.Page = 1
	return s
}

// NextPage advances one page unless already on the last page for total records.
func (s ViewState) NextPage(total int) ViewState {
	if s.Page < TotalPages(total, s.PageSize) {
		s.Page++
	}
	return s
}

// PrevPage goes back one page unless already on the first.
func (s ViewState) PrevPage() ViewState {
	if s.Page > 1 {
		s.Page--
	}
	return s
}

// GoToPage jumps to page, clamped to the valid range for total records.
func (s ViewState) GoToPage(page, total int) ViewState {
	s.Page = clampPage(page, TotalPages(total, s.PageSize))
	return s
}

// TypeCycle moves the type filter through all, BUY, SELL.
func (s ViewState) TypeCycle() ViewState {
	switch s.TypeFilter {
	case "":
		return s.WithTypeFilter(model.TypeBuy)
	case model.TypeBuy:
		return s.WithTypeFilter(model.TypeSell)
	default:
		return s.WithTypeFilter("")
	}
}
