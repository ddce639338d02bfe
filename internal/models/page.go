package models

// Page limits used by every paginated listing.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is the paging block of list responses.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

// ClampPage normalises caller-supplied paging values.
func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// NewPagination computes the page count for total rows.
func NewPagination(page, perPage int, total int64) Pagination {
	page, perPage = ClampPage(page, perPage)
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   (total + int64(perPage) - 1) / int64(perPage),
	}
}
