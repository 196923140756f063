package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/halcyonforge/bookvault/internal/books"
)

// handleListBooks serves GET /api/books: filter, canonicalize, paginate.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	records, err := s.books.List(r.Context(), r.URL.Query())
	if err != nil {
		s.writeBooksError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleCreateBooks serves POST /api/books with an object-or-array body.
func (s *Server) handleCreateBooks(w http.ResponseWriter, r *http.Request) {
	accepted, err := s.books.Create(r.Context(), r.Body)
	if err != nil {
		s.writeBooksError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accepted)
}

// handleUpdateBook serves PUT /api/books/{id} with a partial body.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	updated, err := s.books.Update(r.Context(), r.PathValue("id"), r.Body)
	if err != nil {
		s.writeBooksError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteResponse is the DELETE confirmation payload. The removed record is
// reported as stored, without the canonicalization pass.
type deleteResponse struct {
	Message     string     `json:"message"`
	DeletedBook books.Book `json:"deleted_book"`
}

// handleDeleteBook serves DELETE /api/books/{id}.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	removed, err := s.books.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeBooksError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		Message:     fmt.Sprintf("Book with id %d deleted successfully.", removed.ID),
		DeletedBook: removed,
	})
}

// handleMethodNotAllowed catches methods the method-qualified patterns on
// the same path left unmatched.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	MethodNotAllowed(w, r.URL.Path)
}

// writeBooksError maps pipeline errors onto problem responses. Anything
// outside the domain taxonomy is a 500 and gets logged; domain errors are
// the client's to fix and only reach the response.
func (s *Server) writeBooksError(w http.ResponseWriter, r *http.Request, err error) {
	instance := r.URL.Path

	var invalidKeys *books.InvalidKeysError
	var invalidFilter *books.InvalidFilterValueError
	var invalidLimit *books.InvalidLimitError
	var invalidPage *books.InvalidPageError
	var pageRange *books.PageRangeError

	switch {
	case errors.As(err, &invalidKeys):
		InvalidQueryKeys(w, invalidKeys.Keys, instance)
	case errors.As(err, &invalidFilter),
		errors.As(err, &invalidLimit),
		errors.As(err, &invalidPage):
		BadRequest(w, err.Error(), instance)
	case errors.Is(err, books.ErrBadPayload), errors.Is(err, books.ErrAllDuplicates):
		BadRequest(w, err.Error(), instance)
	case errors.As(err, &pageRange), errors.Is(err, books.ErrNotFound):
		NotFound(w, "no books found", instance)
	default:
		s.logger.Error("books request failed",
			zap.String("method", r.Method),
			zap.String("path", instance),
			zap.Error(err),
		)
		InternalError(w, "internal server error", instance)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
