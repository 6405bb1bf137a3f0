package collection

// Page is one window of a collection. Start and End index into the full
// collection, End exclusive.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Start      int `json:"start"`
	End        int `json:"end"`
}

// Paginate returns the 1-indexed page of items. Pages outside
// [1, TotalPages] produce an empty window. A non-positive pageSize puts
// everything on one page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)
	if pageSize <= 0 {
		pageSize = max(total, 1)
	}

	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	if page < 1 || page > p.TotalPages {
		return p
	}

	p.Start = (page - 1) * pageSize
	p.End = min(p.Start+pageSize, total)
	p.Items = items[p.Start:p.End:p.End]
	return p
}

// PageButtons returns at most width page numbers centred on current,
// clamped to [1, total].
func PageButtons(current, total, width int) []int {
	if total <= 0 || width <= 0 {
		return nil
	}
	n := min(total, width)
	first := current - width/2
	first = max(first, 1)
	first = min(first, total-n+1)

	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}
