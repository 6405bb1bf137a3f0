package collection

import "strings"

// State is the ephemeral UI state of one list view.
type State struct {
	Filter     string     `json:"filter,omitempty"`
	TypeFilter string     `json:"type_filter,omitempty"`
	Sort       SortConfig `json:"sort"`
	Page       int        `json:"page"`
}

// Matcher reports whether an item passes the current filters.
type Matcher[T any] func(item T, st State) bool

// View is the filter, sort and paginate pipeline of a list view.
type View[T any] struct {
	State     State
	PageSize  int
	Accessors Accessors[T]
	Match     Matcher[T]
}

// Result is what a view renders.
type Result[T any] struct {
	Page     Page[T]    `json:"page"`
	Sort     SortConfig `json:"sort"`
	Total    int        `json:"total"`
	Matched  int        `json:"matched"`
	Filtered bool       `json:"filtered"`
	Buttons  []int      `json:"buttons,omitempty"`
}

func (v *View[T]) SetFilter(filter string) {
	v.State.Filter = filter
	v.State.Page = 1
}

func (v *View[T]) SetTypeFilter(recordType string) {
	v.State.TypeFilter = recordType
	v.State.Page = 1
}

// RequestSort cycles the sort for key. Unknown keys are ignored.
func (v *View[T]) RequestSort(key string) {
	if !v.Accessors.Has(key) {
		return
	}
	v.State.Sort = RequestSort(v.State.Sort, key)
	v.State.Page = 1
}

func (v *View[T]) SetPage(page int) {
	v.State.Page = page
}

// Apply runs filter, sort and paginate over items. A stored page that no
// longer exists, because the data shrank, goes back to page 1.
func (v *View[T]) Apply(items []T) Result[T] {
	matched := items
	if v.Match != nil && v.filtering() {
		matched = Filter(items, func(item T) bool { return v.Match(item, v.State) })
	}

	sorted := Sort(matched, v.State.Sort, v.Accessors)
	p := Paginate(sorted, max(v.State.Page, 1), v.PageSize)
	if p.Page > p.TotalPages && p.TotalPages > 0 {
		p = Paginate(sorted, 1, v.PageSize)
	}
	v.State.Page = p.Page
	page := p.Page

	return Result[T]{
		Page:     p,
		Sort:     v.State.Sort,
		Total:    len(items),
		Matched:  len(matched),
		Filtered: v.filtering(),
		Buttons:  PageButtons(page, p.TotalPages, 7),
	}
}

func (v *View[T]) filtering() bool {
	return strings.TrimSpace(v.State.Filter) != "" || v.State.TypeFilter != ""
}

// Filter returns the items keep accepts, in order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// ContainsFold reports whether any of fields contains query, ignoring case.
func ContainsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
