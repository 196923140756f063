package books

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BookInput is one submitted record in a create request. A client-supplied
// id is deliberately absent from the shape: the server assigns identifiers
// and anything the client sends is dropped on the floor.
type BookInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   Year    `json:"year"`
	ISBN   string  `json:"isbn"`
}

// BookUpdate is a partial record for an update request. Pointer fields
// distinguish "absent" from "present but empty"; only present fields are
// applied.
type BookUpdate struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *Year   `json:"year"`
	ISBN   *string `json:"isbn"`
}

// Defaults applied when a create submission omits title or author.
const (
	DefaultTitle  = "Unknown"
	DefaultAuthor = "Anonymous"
)

// Service runs the request pipelines against a Store. Writes serialize the
// whole load-modify-save sequence behind a mutex: two concurrent writers
// sharing a snapshot would otherwise silently drop each other's changes.
// That serialization only holds within this process; it is a known
// limitation of the file-as-database model, not a consistency guarantee.
type Service struct {
	store    Store
	maxLimit int
	logger   *zap.Logger

	mu sync.Mutex // serializes load-modify-save
}

// NewService creates a Service. A maxLimit of zero or below falls back to
// DefaultMaxLimit, and a nil logger is replaced with a no-op one.
func NewService(store Store, maxLimit int, logger *zap.Logger) *Service {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, maxLimit: maxLimit, logger: logger}
}

// List runs the read pipeline: validate query keys, filter, canonicalize,
// paginate. Both an empty filter result and an exhausted page surface as
// ErrNotFound wrappers; malformed parameters surface as their typed errors.
func (s *Service) List(ctx context.Context, params url.Values) ([]Book, error) {
	if err := ValidateQueryKeys(params); err != nil {
		return nil, err
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}

	filtered, err := ApplyFilters(records, FilterParams(params))
	if err != nil {
		return nil, err
	}
	candidates := CanonicalizeAll(filtered)
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	// Limit validates first: the page bound depends on it.
	limit, err := ValidateLimit(params.Get("limit"), s.maxLimit)
	if err != nil {
		return nil, err
	}
	page, err := ValidatePage(params.Get("page"), len(candidates), limit)
	if err != nil {
		return nil, err
	}

	pageSlice := Paginate(candidates, page, limit)
	if len(pageSlice) == 0 {
		return nil, ErrNotFound
	}
	return pageSlice, nil
}

// Create runs the create pipeline on an object-or-array JSON body. Accepted
// records get sequential server-assigned ids and are persisted along with
// the existing set; the returned slice holds only the accepted batch, in
// submission order.
//
// Duplicates are checked against the pre-existing set only, so two copies of
// the same book within one batch are both accepted. Matching long-standing
// client expectations won over closing that hole; see DESIGN.md.
func (s *Service) Create(ctx context.Context, body io.Reader) ([]Book, error) {
	inputs, err := decodeCreatePayload(body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}

	nextID := NextID(existing)
	var accepted []Book
	for _, in := range inputs {
		candidate := Book{
			Title:  DefaultTitle,
			Author: DefaultAuthor,
			Year:   in.Year,
			ISBN:   in.ISBN,
		}
		if in.Title != nil {
			candidate.Title = *in.Title
		}
		if in.Author != nil {
			candidate.Author = *in.Author
		}

		if isDuplicate(existing, candidate) {
			s.logger.Debug("rejecting duplicate book",
				zap.String("title", candidate.Title),
				zap.String("author", candidate.Author),
			)
			continue
		}

		candidate.ID = nextID
		nextID++
		accepted = append(accepted, candidate)
	}

	if len(accepted) == 0 {
		return nil, ErrAllDuplicates
	}

	if err := s.store.Save(ctx, append(existing, accepted...)); err != nil {
		return nil, fmt.Errorf("save books: %w", err)
	}

	s.logger.Info("books created",
		zap.Int("accepted", len(accepted)),
		zap.Int("submitted", len(inputs)),
	)
	return CanonicalizeAll(accepted), nil
}

// Update applies a partial update to the record with the given raw id. An
// unparsable id behaves exactly like an unknown one. Present title and
// author values are trimmed and title-cased before storing; year and isbn
// overwrite verbatim. Untouched fields are preserved.
func (s *Service) Update(ctx context.Context, rawID string, body io.Reader) (Book, error) {
	id, ok := ParseBookID(rawID)
	if !ok {
		return Book{}, ErrNotFound
	}

	var update BookUpdate
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		return Book{}, fmt.Errorf("%w: %s", ErrBadPayload, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return Book{}, fmt.Errorf("load books: %w", err)
	}

	idx := indexByID(records, id)
	if idx < 0 {
		return Book{}, ErrNotFound
	}

	titleCaser := cases.Title(language.Und)
	if update.Title != nil {
		records[idx].Title = titleCaser.String(strings.TrimSpace(*update.Title))
	}
	if update.Author != nil {
		records[idx].Author = titleCaser.String(strings.TrimSpace(*update.Author))
	}
	if update.Year != nil {
		records[idx].Year = *update.Year
	}
	if update.ISBN != nil {
		records[idx].ISBN = *update.ISBN
	}

	if err := s.store.Save(ctx, records); err != nil {
		return Book{}, fmt.Errorf("save books: %w", err)
	}

	s.logger.Info("book updated", zap.Int("id", id))
	return Canonicalize(records[idx]), nil
}

// Delete removes the record with the given raw id. The removed record is
// returned in its stored (non-normalized) representation for the
// confirmation payload. Removal is immediate and permanent.
func (s *Service) Delete(ctx context.Context, rawID string) (Book, error) {
	id, ok := ParseBookID(rawID)
	if !ok {
		return Book{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return Book{}, fmt.Errorf("load books: %w", err)
	}

	idx := indexByID(records, id)
	if idx < 0 {
		return Book{}, ErrNotFound
	}

	removed := records[idx]
	remaining := append(records[:idx:idx], records[idx+1:]...)
	if err := s.store.Save(ctx, remaining); err != nil {
		return Book{}, fmt.Errorf("save books: %w", err)
	}

	s.logger.Info("book deleted", zap.Int("id", id))
	return removed, nil
}

// decodeCreatePayload reads an object-or-array body into a uniform slice.
// An empty body, malformed JSON, or an empty array all collapse into
// ErrBadPayload.
func decodeCreatePayload(body io.Reader) ([]BookInput, error) {
	if body == nil {
		return nil, ErrBadPayload
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadPayload, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrBadPayload
	}

	var inputs []BookInput
	if data[0] == '[' {
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadPayload, err)
		}
	} else {
		var single BookInput
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadPayload, err)
		}
		inputs = []BookInput{single}
	}

	if len(inputs) == 0 {
		return nil, ErrBadPayload
	}
	return inputs, nil
}

func isDuplicate(existing []Book, candidate Book) bool {
	for _, b := range existing {
		if candidate.DuplicateOf(b) {
			return true
		}
	}
	return false
}

func indexByID(records []Book, id int) int {
	for i, b := range records {
		if b.ID == id {
			return i
		}
	}
	return -1
}
