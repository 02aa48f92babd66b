package service

import (
	"strconv"
	"strings"
)

// DefaultPageSize is the number of posts on one listing page.
const DefaultPageSize = 6

// ParsePage converts a page query value into a 1-based page number.
// Missing, non-numeric and non-positive values all become page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// SanitizeSearchTerm keeps ASCII letters, digits and spaces so the term can
// never be read as a pattern by the store.
func SanitizeSearchTerm(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pageWindow returns the offset of page and whether another page follows it.
// inRange is false when page starts at or past the last post; the caller
// then skips the windowed read. Only the page count is multiplied, so huge
// page numbers cannot overflow into a small offset.
func pageWindow(page, pageSize int, total int64) (offset int, hasNext, inRange bool) {
	if page < 1 || pageSize < 1 || total <= 0 {
		return 0, false, false
	}
	size := int64(pageSize)
	lastPage := total/size + min(total%size, 1)
	if int64(page) > lastPage {
		return 0, false, false
	}
	return (page - 1) * pageSize, int64(page) < lastPage, true
}
