package books

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the pipelines.
var (
	// ErrNotFound covers both "no records after filtering" and "no such id".
	ErrNotFound = errors.New("no books found")

	// ErrBadPayload is returned for an absent, unparseable, or empty create body.
	ErrBadPayload = errors.New("request body must be a book object or an array of book objects")

	// ErrAllDuplicates is returned when every submitted book already exists.
	ErrAllDuplicates = errors.New("all submitted books already exist")
)

// InvalidKeysError reports every unknown query key in the request, not just
// the first one encountered.
type InvalidKeysError struct {
	Keys []string
}

func (e *InvalidKeysError) Error() string {
	return fmt.Sprintf("invalid query parameters: %s", strings.Join(e.Keys, ", "))
}

// InvalidFilterValueError reports a filter value that must be numeric but
// is not (the id and year filters).
type InvalidFilterValueError struct {
	Field string
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("invalid integer for %q", e.Field)
}

// InvalidLimitError reports a limit that is non-numeric, below 1, or above
// the configured maximum.
type InvalidLimitError struct {
	Raw string
	Max int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("limit must be an integer between 1 and %d, got %q", e.Max, e.Raw)
}

// InvalidPageError reports a page value that is non-numeric or below 1.
type InvalidPageError struct {
	Raw string
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("page must be an integer >= 1, got %q", e.Raw)
}

// PageRangeError reports a page past the end of the result set. It is kept
// distinct from InvalidPageError because an exhausted page surfaces to the
// client as not-found, while a malformed page is a bad request.
type PageRangeError struct {
	Page    int
	MaxPage int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range, last page is %d", e.Page, e.MaxPage)
}
