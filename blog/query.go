package blog

import "strings"

// Listing defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Query selects a page of posts.
type Query struct {
	Page     int    // 1-based; zero means DefaultPage
	PageSize int    // zero means DefaultPageSize
	Keyword  string // case-insensitive match on title, content or short snippet
	Author   string // case-insensitive match on author
}

// Normalize returns q with zero page fields replaced by their defaults
// and filters trimmed.
func (q Query) Normalize() Query {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	q.Author = strings.TrimSpace(q.Author)
	return q
}

// Validate rejects out-of-range page numbers and sizes. Call it on a
// normalized query.
func (q Query) Validate() error {
	if q.Page < 1 {
		return &ValidationError{Fields: []string{"page"}, Msg: "Invalid page number"}
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return &ValidationError{Fields: []string{"pageSize"}, Msg: "Invalid page size"}
	}
	return nil
}

// Offset returns the number of matching posts before the requested page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// TotalPages returns how many pages total matching posts fill.
func (q Query) TotalPages(total int) int {
	if q.PageSize < 1 || total <= 0 {
		return 0
	}
	return (total + q.PageSize - 1) / q.PageSize
}

// Matches reports whether p passes the keyword and author filters.
func (q Query) Matches(p Post) bool {
	if q.Author != "" && !containsFold(p.Author, q.Author) {
		return false
	}
	if q.Keyword != "" &&
		!containsFold(p.Title, q.Keyword) &&
		!containsFold(p.Content, q.Keyword) &&
		!containsFold(p.ShortSnippet, q.Keyword) {
		return false
	}
	return true
}

// Paginate returns the page of matching that q selects.
func (q Query) Paginate(matching []Post) []Post {
	start := q.Offset()
	if start >= len(matching) {
		return []Post{}
	}
	end := start + q.PageSize
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
