package books

// Paginate returns the 1-based page of size limit from records, preserving
// order. A start index past the end yields an empty slice; the caller treats
// that as a secondary not-found condition even when the page number already
// validated, guarding the off-by-one edge at the last page boundary.
func Paginate(records []Book, page, limit int) []Book {
	start := (page - 1) * limit
	if start >= len(records) {
		return []Book{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
