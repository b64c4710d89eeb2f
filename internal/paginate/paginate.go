// Package paginate slices result sets into fixed-size pages and computes the
// compact page-number window shown under a result list.
package paginate

// DefaultPageSize is used when a non-positive page size is configured.
const DefaultPageSize = 10

// fullWindow is the largest page count for which every page number is shown.
const fullWindow = 7

// Item is one entry of a page window: a page number or an ellipsis.
type Item struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Result is one page of items plus the data needed to render page controls.
type Result[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
	Window     []Item `json:"window"`
}

// Paginator holds a configured page size.
type Paginator struct {
	PageSize int
}

// New returns a paginator, falling back to DefaultPageSize for size <= 0.
func New(size int) Paginator {
	return Paginator{PageSize: normalizeSize(size)}
}

// Size returns the effective page size.
func (p Paginator) Size() int {
	return normalizeSize(p.PageSize)
}

// TotalPages returns the number of pages needed for n items.
func (p Paginator) TotalPages(n int) int {
	return TotalPages(n, p.Size())
}

func normalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}

// TotalPages returns ceil(n / size).
func TotalPages(n, size int) int {
	size = normalizeSize(size)
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage moves page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Page returns the items of the given 1-based page, clamped into range.
func Page[T any](items []T, size, page int) []T {
	size = normalizeSize(size)
	page = ClampPage(page, TotalPages(len(items), size))

	start := (page - 1) * size
	if start >= len(items) {
		return items[len(items):]
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Window returns the page numbers to display for current out of total pages.
// Up to seven pages are all shown; otherwise the first and last pages and
// current +-1 are shown, with one ellipsis in each gap.
func Window(current, total int) []Item {
	if total <= 0 {
		return []Item{}
	}
	if total <= fullWindow {
		items := make([]Item, 0, total)
		for p := 1; p <= total; p++ {
			items = append(items, Item{Page: p})
		}
		return items
	}

	current = ClampPage(current, total)
	shown := []int{1}
	for p := current - 1; p <= current+1; p++ {
		if p > 1 && p < total {
			shown = append(shown, p)
		}
	}
	shown = append(shown, total)

	items := make([]Item, 0, len(shown)+2)
	for i, p := range shown {
		if i > 0 && p-shown[i-1] > 1 {
			items = append(items, Item{Ellipsis: true})
		}
		items = append(items, Item{Page: p})
	}
	return items
}

// Paginate slices items for page and computes the window.
func Paginate[T any](items []T, size, page int) Result[T] {
	size = normalizeSize(size)
	total := TotalPages(len(items), size)
	page = ClampPage(page, total)

	slice := Page(items, size, page)
	if slice == nil {
		slice = []T{}
	}
	return Result[T]{
		Items:      slice,
		Page:       page,
		PageSize:   size,
		TotalPages: total,
		TotalItems: len(items),
		Window:     Window(page, total),
	}
}
