package domain

import "time"

// Movie mirrors the persisted representation of a catalog entry.
type Movie struct {
	ID          string
	Title       string
	Genre       string
	ReleaseYear int
	Rating      *float64
	Director    string
	Duration    int
	Description string
	Premium     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MovieFilter narrows catalog listings.
type MovieFilter struct {
	Title   string
	Genre   string
	Page    int
	PerPage int
}

// Normalize clamps pagination to sane bounds.
func (f *MovieFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
}

// MoviePage is a single page of catalog results.
type MoviePage struct {
	Movies     []Movie
	Page       int
	PerPage    int
	TotalCount int
}

// TotalPages derives the page count from the total and page size.
func (p MoviePage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	pages := p.TotalCount / p.PerPage
	if p.TotalCount%p.PerPage != 0 {
		pages++
	}
	return pages
}
