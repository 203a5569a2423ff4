package articles

// Pager slices a snapshot of the full token-id sequence into fixed-size
// pages for display, newest-created first. Navigation is a pure client-side
// slice of the snapshot; it never re-fetches, so staleness across pages is
// bounded by the next full reload.
type Pager struct {
	ids      []uint64
	pageSize int
	page     int
}

// NewPager snapshots ids and reverses them so the most recently created
// article appears first. Page indexes start at 1.
func NewPager(ids []uint64, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 20
	}
	reversed := make([]uint64, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	return &Pager{ids: reversed, pageSize: pageSize, page: 1}
}

// Total returns the number of ids in the snapshot.
func (p *Pager) Total() int { return len(p.ids) }

// TotalPages returns ceil(N/P); zero when the snapshot is empty.
func (p *Pager) TotalPages() int {
	return (len(p.ids) + p.pageSize - 1) / p.pageSize
}

// Empty reports whether there are no articles at all. A failed listing is
// a different state and never reaches the pager.
func (p *Pager) Empty() bool { return len(p.ids) == 0 }

// CurrentPage returns the 1-based current page index.
func (p *Pager) CurrentPage() int { return p.page }

// SetPage moves to page n, clamped to [1, TotalPages]. It never wraps.
func (p *Pager) SetPage(n int) {
	p.page = clampPage(n, p.TotalPages())
}

// Next advances one page, clamped at the last page.
func (p *Pager) Next() { p.SetPage(p.page + 1) }

// Prev goes back one page, clamped at page 1.
func (p *Pager) Prev() { p.SetPage(p.page - 1) }

// HasNext reports whether a next page exists; the "next" control is
// disabled when it does not.
func (p *Pager) HasNext() bool { return p.page < p.TotalPages() }

// HasPrev reports whether a previous page exists.
func (p *Pager) HasPrev() bool { return p.page > 1 }

// Current returns the ids on the current page.
func (p *Pager) Current() []uint64 {
	return p.Page(p.page)
}

// Page returns the ids on page n (1-based, clamped). An empty snapshot
// yields an empty page.
func (p *Pager) Page(n int) []uint64 {
	total := p.TotalPages()
	if total == 0 {
		return nil
	}
	n = clampPage(n, total)
	start := (n - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(p.ids) {
		end = len(p.ids)
	}
	return p.ids[start:end]
}

func clampPage(n, total int) int {
	if total < 1 {
		total = 1
	}
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}
