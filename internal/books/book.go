// Package books implements the book collection domain: the record type,
// query validation, filtering, pagination, and the create/update/delete
// pipelines. Persistence is abstracted behind the Store interface so the
// pipelines stay independent of the backing file or database.
package books

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
)

// Book is a single record in the collection. Field declaration order is the
// canonical output order (id, title, author, year, isbn) and is consulted by
// encoding/json at serialization time.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   Year   `json:"year"`
	ISBN   string `json:"isbn"`
}

// DuplicateOf reports whether b and other collide under the duplicate rule:
// title and author both match exactly, case-sensitive, as submitted.
func (b Book) DuplicateOf(other Book) bool {
	return b.Title == other.Title && b.Author == other.Author
}

// Year is an integer-or-empty publication year. Legacy store files written by
// earlier versions of the service hold "" for an absent year, so Year accepts
// a JSON number, a numeric string, an empty string, or null on input. An
// unset Year serializes as null.
type Year struct {
	Int   int
	Valid bool
}

// NewYear returns a set Year.
func NewYear(v int) Year {
	return Year{Int: v, Valid: true}
}

// MarshalJSON encodes the year as a bare number, or null when unset.
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(y.Int)), nil
}

// UnmarshalJSON decodes a number, a numeric string, "" or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = Year{}
		return nil
	}

	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
		if raw == "" {
			*y = Year{}
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("year must be an integer, got %s", data)
	}
	*y = Year{Int: n, Valid: true}
	return nil
}

// Store is the persistence collaborator. Each request performs a full Load,
// a pure computation, and a full Save; the stored sequence order is the
// collection's insertion order. Implementations must treat a missing or
// unreadable backing file as an empty collection, not an error.
type Store interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, records []Book) error
}

// NextID returns the identifier the next created record receives:
// max(existing ids) + 1, or 1 for an empty collection.
func NextID(records []Book) int {
	maxID := 0
	for _, b := range records {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	return maxID + 1
}
