package domain

// Pagination is the paging state reported by the backend for one list page.
type Pagination struct {
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
	Count   int    `json:"count"`
	NextURL string `json:"nextUrl"`
	PrevURL string `json:"prevUrl"`
}

// PageCount returns ceil(Count / PerPage), or 0 when PerPage is not positive.
func (p Pagination) PageCount() int {
	if p.PerPage <= 0 || p.Count <= 0 {
		return 0
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// HasNext reports whether the backend advertised a following page.
func (p Pagination) HasNext() bool {
	return p.NextURL != ""
}

// HasPrev reports whether the backend advertised a preceding page.
func (p Pagination) HasPrev() bool {
	return p.PrevURL != ""
}
