package analytics

import (
	"fmt"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// Page is one page of a sorted, filtered ledger.
type Page struct {
	Items      []model.Transaction
	Number     int
	TotalPages int
	Total      int
	Start      int // zero-based index of the first item in the full sequence
}

// HasNext returns true if a later page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev returns true if an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// Showing renders the "Showing X–Y of N" caption.
func (p Page) Showing() string {
	if p.Total == 0 {
		return "Showing 0 of 0"
	}
	return fmt.Sprintf("Showing %d–%d of %d", p.Start+1, p.Start+len(p.Items), p.Total)
}

// TotalPages returns max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate returns the requested page of txs. Out-of-range page numbers are
// clamped to [1, TotalPages].
func Paginate(txs []model.Transaction, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(txs)
	pages := TotalPages(total, pageSize)
	page = clampPage(page, pages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return Page{
		Items:      txs[start:end],
		Number:     page,
		TotalPages: pages,
		Total:      total,
		Start:      start,
	}
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
