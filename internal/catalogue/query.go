package catalogue

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterByCategory returns the records in category c, in their original order.
// The input is never modified and the result is never nil.
func FilterByCategory[T Record](records []T, c Category) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordCategory() == c {
			out = append(out, r)
		}
	}
	return out
}

// Search returns the records where any search field contains query,
// ignoring case. A blank query matches every record.
func Search[T Record](records []T, query string) []T {
	if strings.TrimSpace(query) == "" {
		return append(make([]T, 0, len(records)), records...)
	}

	// cases.Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]T, 0, len(records))
	for _, r := range records {
		for _, field := range r.SearchFields() {
			if strings.Contains(fold.String(field), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Query narrows records to category c (any when empty) and then applies Search.
func Query[T Record](records []T, c Category, query string) []T {
	if c != "" {
		records = FilterByCategory(records, c)
	}
	return Search(records, query)
}
