package books

import (
	"net/url"
	"sort"
	"strconv"
)

// DefaultLimit is the page size used when the client sends no limit.
const DefaultLimit = 10

// DefaultMaxLimit caps the page size when no maximum is configured.
const DefaultMaxLimit = 10

// allowedQueryKeys is the complete set of query keys GET /api/books accepts.
var allowedQueryKeys = map[string]struct{}{
	"title":  {},
	"author": {},
	"id":     {},
	"year":   {},
	"isbn":   {},
	"page":   {},
	"limit":  {},
}

// ValidateQueryKeys checks every key in params against the allowed set and
// returns an InvalidKeysError listing all offending keys, sorted for
// deterministic output.
func ValidateQueryKeys(params url.Values) error {
	var invalid []string
	for key := range params {
		if _, ok := allowedQueryKeys[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &InvalidKeysError{Keys: invalid}
	}
	return nil
}

// ValidateLimit parses the raw limit parameter. An absent value falls back
// to DefaultLimit; anything non-numeric, below 1, or above maxLimit is an
// InvalidLimitError.
func ValidateLimit(raw string, maxLimit int) (int, error) {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if raw == "" {
		if DefaultLimit < maxLimit {
			return DefaultLimit, nil
		}
		return maxLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, &InvalidLimitError{Raw: raw, Max: maxLimit}
	}
	return limit, nil
}

// ValidatePage parses the raw page parameter against the current result
// size. An absent value means page 1. A non-numeric value or one below 1 is
// an InvalidPageError; a numerically valid page past ceil(total/limit) is a
// PageRangeError. A total of zero makes every page out of range.
func ValidatePage(raw string, total, limit int) (int, error) {
	if raw == "" {
		raw = "1"
	}

	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, &InvalidPageError{Raw: raw}
	}

	maxPage := total / limit
	if total%limit != 0 {
		maxPage++
	}
	if page > maxPage {
		return 0, &PageRangeError{Page: page, MaxPage: maxPage}
	}
	return page, nil
}

// ParseBookID parses a path identifier. Failure is not an error: callers
// treat a false return as "no matching record".
func ParseBookID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
