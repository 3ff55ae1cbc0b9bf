package pages

import "strings"

// OrderBy names the child orderings navigation can request. A leading '-'
// means newest first.
type OrderBy string

const (
	OrderLastPublishedDesc  OrderBy = "-last_published_at"
	OrderFirstPublishedDesc OrderBy = "-first_published_at"
	OrderFirstPublishedAsc  OrderBy = "first_published_at"
)

// DefaultOrder is used when a query leaves OrderBy empty.
const DefaultOrder = OrderFirstPublishedDesc

func (o OrderBy) Valid() bool {
	switch o {
	case OrderLastPublishedDesc, OrderFirstPublishedDesc, OrderFirstPublishedAsc:
		return true
	}
	return false
}

// ParseOrderBy accepts the stored value with surrounding whitespace. Empty
// input yields DefaultOrder.
func ParseOrderBy(value string) (OrderBy, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultOrder, true
	}
	o := OrderBy(value)
	return o, o.Valid()
}

// ChildQuery filters and orders the children of a page.
type ChildQuery struct {
	LiveOnly        bool
	PublicOnly      bool
	MenuVisibleOnly bool
	OrderBy         OrderBy
	Limit           int
}
