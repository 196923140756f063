package books

import "strings"

// Canonicalize shapes a record into its canonical output form. The field
// order itself is fixed by the Book struct definition; this pass normalizes
// the field contents loaded from storage (legacy files carry padded strings
// and string-typed years, which Year decoding already folds in).
func Canonicalize(b Book) Book {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
	return b
}

// CanonicalizeAll maps Canonicalize over a result set. Applied after
// filtering and before pagination, so page boundaries are computed over the
// final candidate order.
func CanonicalizeAll(records []Book) []Book {
	out := make([]Book, len(records))
	for i, b := range records {
		out[i] = Canonicalize(b)
	}
	return out
}
