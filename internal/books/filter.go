package books

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FilterParams returns the subset of query params that narrow the record set,
// i.e. everything except the pagination controls.
func FilterParams(params url.Values) url.Values {
	filters := url.Values{}
	for key, vals := range params {
		if key == "page" || key == "limit" {
			continue
		}
		filters[key] = vals
	}
	return filters
}

// ApplyFilters narrows records to those matching every filter (conjunctive),
// preserving the original order. Values are trimmed of surrounding whitespace
// and one layer of double quotes before matching. The id and year filters
// require an exact integer match; title, author, and isbn match by
// case-insensitive substring.
func ApplyFilters(records []Book, filters url.Values) ([]Book, error) {
	// Sorted keys keep the first-error choice deterministic.
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := cleanFilterValue(filters.Get(key))

		switch key {
		case "id", "year":
			want, err := strconv.Atoi(value)
			if err != nil {
				return nil, &InvalidFilterValueError{Field: key}
			}
			records = filterExact(records, key, want)
		default:
			records = filterSubstring(records, key, value)
		}
	}
	return records, nil
}

// cleanFilterValue trims whitespace and a single layer of surrounding
// double quotes, so ?author="orwell" behaves like ?author=orwell.
func cleanFilterValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return v
}

func filterExact(records []Book, field string, want int) []Book {
	kept := records[:0:0]
	for _, b := range records {
		switch field {
		case "id":
			if b.ID == want {
				kept = append(kept, b)
			}
		case "year":
			if b.Year.Valid && b.Year.Int == want {
				kept = append(kept, b)
			}
		}
	}
	return kept
}

func filterSubstring(records []Book, field, value string) []Book {
	needle := strings.ToLower(value)
	kept := records[:0:0]
	for _, b := range records {
		var haystack string
		switch field {
		case "title":
			haystack = b.Title
		case "author":
			haystack = b.Author
		case "isbn":
			haystack = b.ISBN
		}
		haystack = strings.ToLower(strings.TrimSpace(haystack))
		if strings.Contains(haystack, needle) {
			kept = append(kept, b)
		}
	}
	return kept
}
