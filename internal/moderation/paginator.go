package moderation

// PostsPerPage is the fixed moderation table page size.
const PostsPerPage = 10

// windowSize caps how many page numbers the console shows at once.
const windowSize = 5

// TotalPages returns ceil(totalCount / pageSize) with a minimum of 1
// page so an empty table still renders page 1.
func TotalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = PostsPerPage
	}
	pages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// PageWindow computes the page numbers to display around currentPage.
// At most windowSize entries:
//
//	totalPages <= 5           -> 1..totalPages
//	currentPage <= 3          -> 1..5
//	currentPage >= total - 2  -> last 5
//	otherwise                 -> currentPage-2 .. currentPage+2
func PageWindow(totalPages, currentPage int) []int {
	if totalPages < 1 {
		totalPages = 1
	}

	var first int
	switch {
	case totalPages <= windowSize:
		first = 1
	case currentPage <= 3:
		first = 1
	case currentPage >= totalPages-2:
		first = totalPages - windowSize + 1
	default:
		first = currentPage - 2
	}

	count := windowSize
	if totalPages < windowSize {
		count = totalPages
	}

	window := make([]int, count)
	for i := range window {
		window[i] = first + i
	}
	return window
}

// Pager tracks the moderation console's pagination state.
type Pager struct {
	pageSize    int
	totalCount  int64
	currentPage int
	flaggedOnly bool
}

// NewPager starts on page 1 showing all posts.
func NewPager() *Pager {
	return &Pager{pageSize: PostsPerPage, currentPage: 1}
}

// SetTotalCount records the row count and clamps the current page back
// into range if the collection shrank.
func (p *Pager) SetTotalCount(totalCount int64) {
	p.totalCount = totalCount
	if max := TotalPages(totalCount, p.pageSize); p.currentPage > max {
		p.currentPage = max
	}
}

// HandlePageChange moves to page n. Out-of-range requests are ignored.
func (p *Pager) HandlePageChange(n int) {
	if n < 1 || n > TotalPages(p.totalCount, p.pageSize) {
		return
	}
	p.currentPage = n
}

// SetFlaggedOnly switches the filter and resets to page 1.
func (p *Pager) SetFlaggedOnly(flaggedOnly bool) {
	p.flaggedOnly = flaggedOnly
	p.currentPage = 1
}

func (p *Pager) CurrentPage() int  { return p.currentPage }
func (p *Pager) FlaggedOnly() bool { return p.flaggedOnly }
func (p *Pager) TotalPages() int   { return TotalPages(p.totalCount, p.pageSize) }

// Window returns the page numbers to display for the current state.
func (p *Pager) Window() []int {
	return PageWindow(p.TotalPages(), p.currentPage)
}

// Offset converts the current page into a row offset.
func (p *Pager) Offset() int {
	return (p.currentPage - 1) * p.pageSize
}
