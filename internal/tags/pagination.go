package tags

import "strconv"

const (
	DefaultPerPage    = 20
	DefaultOnEachSide = 2
	DefaultOnEnds     = 1
	Ellipsis          = "…"
)

// Page describes one page of a paginated listing.
type Page struct {
	Number   int `json:"number"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	NumPages int `json:"num_pages"`
	Offset   int `json:"offset"`
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }

// Paginate clamps page into [1, NumPages]. An empty listing still has one
// page.
func Paginate(total, perPage, page int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	numPages := (total + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}
	page = min(max(page, 1), numPages)
	return Page{
		Number:   page,
		PerPage:  perPage,
		Total:    total,
		NumPages: numPages,
		Offset:   (page - 1) * perPage,
	}
}

// ParsePage reads a page number from a query value, defaulting to 1.
func ParsePage(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// RangeItem is a page number or an ellipsis gap.
type RangeItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (i RangeItem) String() string {
	if i.Ellipsis {
		return Ellipsis
	}
	return strconv.Itoa(i.Number)
}

// ElidedRange lists the page links around current, keeping onEnds pages
// at either end and onEachSide pages beside current, with gaps elided.
func ElidedRange(current, numPages, onEachSide, onEnds int) []RangeItem {
	if numPages < 1 {
		return nil
	}
	if onEachSide < 0 {
		onEachSide = DefaultOnEachSide
	}
	if onEnds < 0 {
		onEnds = DefaultOnEnds
	}
	current = min(max(current, 1), numPages)

	var out []RangeItem
	span := func(from, to int) {
		for n := from; n <= to; n++ {
			out = append(out, RangeItem{Number: n})
		}
	}
	if numPages <= (onEachSide+onEnds)*2 {
		span(1, numPages)
		return out
	}
	if current > 1+onEachSide+onEnds+1 {
		span(1, onEnds)
		out = append(out, RangeItem{Ellipsis: true})
		span(current-onEachSide, current)
	} else {
		span(1, current)
	}
	if current < numPages-onEachSide-onEnds-1 {
		span(current+1, current+onEachSide)
		out = append(out, RangeItem{Ellipsis: true})
		span(numPages-onEnds+1, numPages)
	} else {
		span(current+1, numPages)
	}
	return out
}
