package listing

// MaxPageButtons is the widest page-number window shown by a pager.
const MaxPageButtons = 5

// Page is one slice of a paginated result set.
// EndIndex is not clamped to TotalItems; use ShowingTo for display.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
	TotalItems int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices records into the requested 1-based page.
// An out-of-range page yields an empty Items slice, never an error.
func Paginate[T any](records []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize

	items := []T{}
	if page >= 1 && start < total {
		items = append(items, records[start:min(end, total)]...)
	}

	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		StartIndex: start,
		EndIndex:   end,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// ShowingFrom is the 1-based index of the first item on the page, or 0 when nothing is shown.
func (p Page[T]) ShowingFrom() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.StartIndex + 1
}

// ShowingTo is the 1-based index of the last item on the page, clamped to the total.
func (p Page[T]) ShowingTo() int {
	if len(p.Items) == 0 {
		return 0
	}
	return min(p.EndIndex, p.TotalItems)
}

// Window returns the page numbers a pager should render for this page.
func (p Page[T]) Window() []int {
	return PageWindow(p.Page, p.TotalPages)
}

// PageWindow returns at most MaxPageButtons page numbers around current.
// With more pages than buttons the window is pinned to the first or last
// pages near the edges and centred on current otherwise.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	first, last := 1, totalPages
	switch {
	case totalPages <= MaxPageButtons:
	case current <= 3:
		last = MaxPageButtons
	case current >= totalPages-2:
		first = totalPages - MaxPageButtons + 1
	default:
		first, last = current-2, current+2
	}

	window := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		window = append(window, i)
	}
	return window
}
