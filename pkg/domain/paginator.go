package domain

// PaginatorInput requests one page of a list. Pages are 1-based; nil fields let
// the server apply its defaults.
type PaginatorInput struct {
	Page    *int `json:"page,omitempty"`
	PerPage *int `json:"perPage,omitempty"`
}

// NewPaginatorInput builds a PaginatorInput from plain values. Non-positive
// values are left unset.
func NewPaginatorInput(page, perPage int) *PaginatorInput {
	p := &PaginatorInput{}
	if page > 0 {
		p.Page = &page
	}
	if perPage > 0 {
		p.PerPage = &perPage
	}
	return p
}

// Page describes where a returned page sits.
type Page struct {
	Previous *int `json:"previous"`
	Current  int  `json:"current"`
	Next     *int `json:"next"`
}

// Paginator is returned alongside every list.
type Paginator struct {
	PerPage int  `json:"perPage"`
	Items   int  `json:"items"`
	Pages   int  `json:"pages"`
	Page    Page `json:"page"`
}

// PageCount returns ceil(items / perPage), the number of pages the server
// reports for the given totals. perPage <= 0 yields 0.
func PageCount(items, perPage int) int {
	if perPage <= 0 || items <= 0 {
		return 0
	}
	return (items + perPage - 1) / perPage
}

// Consistent reports whether Pages agrees with Items and PerPage.
func (p Paginator) Consistent() bool {
	return p.Pages == PageCount(p.Items, p.PerPage)
}

// HasNext reports whether a following page exists.
func (p Paginator) HasNext() bool {
	return p.Page.Next != nil
}

// HasPrevious reports whether a preceding page exists.
func (p Paginator) HasPrevious() bool {
	return p.Page.Previous != nil
}
