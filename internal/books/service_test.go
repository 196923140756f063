package books_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonforge/bookvault/internal/books"
	"github.com/halcyonforge/bookvault/internal/store"
)

func newTestService(t *testing.T, seed []books.Book) (*books.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(seed)
	return books.NewService(mem, 10, nil), mem
}

func seedShelf() []books.Book {
	return []books.Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Year: books.NewYear(1925)},
		{ID: 2, Title: "1984", Author: "George Orwell", Year: books.NewYear(1949)},
		{ID: 3, Title: "Dune", Author: "Frank Herbert", Year: books.NewYear(1965)},
	}
}

// --- List ---

func TestServiceList_NoParamsReturnsAll(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	got, err := svc.List(context.Background(), url.Values{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "The Great Gatsby", got[0].Title)
}

func TestServiceList_FilterByID(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	params := url.Values{}
	params.Set("id", "2")
	got, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)
}

func TestServiceList_EmptyFilterResultIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	params := url.Values{}
	params.Set("author", "tolkien")
	_, err := svc.List(context.Background(), params)
	assert.ErrorIs(t, err, books.ErrNotFound)
}

func TestServiceList_EmptyStoreIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.List(context.Background(), url.Values{})
	assert.ErrorIs(t, err, books.ErrNotFound)
}

func TestServiceList_InvalidKeyRejected(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	params := url.Values{}
	params.Set("publisher", "x")
	_, err := svc.List(context.Background(), params)

	var invalid *books.InvalidKeysError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"publisher"}, invalid.Keys)
}

func TestServiceList_PageBeyondEndIsRangeError(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	params := url.Values{}
	params.Set("page", "2")
	_, err := svc.List(context.Background(), params)

	var rangeErr *books.PageRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestServiceList_Pagination(t *testing.T) {
	seed := make([]books.Book, 0, 12)
	for i := 1; i <= 12; i++ {
		seed = append(seed, books.Book{ID: i, Title: "Vol", Author: "Series"})
	}
	svc, _ := newTestService(t, seed)

	params := url.Values{}
	params.Set("page", "2")
	params.Set("limit", "5")
	got, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 6, got[0].ID)
	assert.Equal(t, 10, got[4].ID)
}

// --- Create ---

func TestServiceCreate_SingleObject(t *testing.T) {
	svc, mem := newTestService(t, seedShelf())

	body := strings.NewReader(`{"title":"Hyperion","author":"Dan Simmons","year":1989}`)
	accepted, err := svc.Create(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, accepted, 1)

	assert.Equal(t, 4, accepted[0].ID, "id is server-assigned as max+1")
	assert.Equal(t, "Hyperion", accepted[0].Title)
	assert.Equal(t, books.NewYear(1989), accepted[0].Year)
	assert.Equal(t, "", accepted[0].ISBN, "isbn defaults to empty")

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestServiceCreate_ClientIDIgnored(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	body := strings.NewReader(`{"id":999,"title":"Hyperion","author":"Dan Simmons"}`)
	accepted, err := svc.Create(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, 4, accepted[0].ID)
}

func TestServiceCreate_DefaultsTitleAndAuthor(t *testing.T) {
	svc, _ := newTestService(t, nil)

	accepted, err := svc.Create(context.Background(), strings.NewReader(`{"year":2020}`))
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "Unknown", accepted[0].Title)
	assert.Equal(t, "Anonymous", accepted[0].Author)
	assert.Equal(t, 1, accepted[0].ID, "first record in an empty store gets id 1")
}

func TestServiceCreate_ArrayAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	body := strings.NewReader(`[
		{"title":"Hyperion","author":"Dan Simmons"},
		{"title":"Endymion","author":"Dan Simmons"}
	]`)
	accepted, err := svc.Create(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, accepted, 2)
	assert.Equal(t, 4, accepted[0].ID)
	assert.Equal(t, 5, accepted[1].ID)
}

func TestServiceCreate_DuplicateRejected(t *testing.T) {
	svc, mem := newTestService(t, seedShelf())

	body := strings.NewReader(`{"title":"Dune","author":"Frank Herbert"}`)
	_, err := svc.Create(context.Background(), body)
	assert.ErrorIs(t, err, books.ErrAllDuplicates)

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3, "store must still contain exactly one Dune")
}

func TestServiceCreate_MixedBatchKeepsNonDuplicates(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	body := strings.NewReader(`[
		{"title":"Dune","author":"Frank Herbert"},
		{"title":"Hyperion","author":"Dan Simmons"}
	]`)
	accepted, err := svc.Create(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "Hyperion", accepted[0].Title)
	assert.Equal(t, 4, accepted[0].ID)
}

// Duplicates are only checked against the pre-existing set, so a batch
// containing the same book twice stores both copies.
func TestServiceCreate_IntraBatchDuplicatesPass(t *testing.T) {
	svc, mem := newTestService(t, nil)

	body := strings.NewReader(`[
		{"title":"Hyperion","author":"Dan Simmons"},
		{"title":"Hyperion","author":"Dan Simmons"}
	]`)
	accepted, err := svc.Create(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, accepted, 2)

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestServiceCreate_BadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "whitespace body", body: "   \n"},
		{name: "malformed json", body: `{"title": `},
		{name: "empty array", body: `[]`},
		{name: "wrong type", body: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, seedShelf())
			_, err := svc.Create(context.Background(), strings.NewReader(tt.body))
			assert.ErrorIs(t, err, books.ErrBadPayload)
		})
	}
}

// --- Update ---

func TestServiceUpdate_TitleCasesTitleAndAuthor(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	body := strings.NewReader(`{"title":"  the martian ","author":" andy weir"}`)
	updated, err := svc.Update(context.Background(), "3", body)
	require.NoError(t, err)
	assert.Equal(t, "The Martian", updated.Title)
	assert.Equal(t, "Andy Weir", updated.Author)
	assert.Equal(t, 3, updated.ID, "id is immutable")
	assert.Equal(t, books.NewYear(1965), updated.Year, "untouched fields preserved")
}

func TestServiceUpdate_YearAndISBNVerbatim(t *testing.T) {
	svc, mem := newTestService(t, seedShelf())

	body := strings.NewReader(`{"year":1966,"isbn":" 978-0441013593 "}`)
	updated, err := svc.Update(context.Background(), "3", body)
	require.NoError(t, err)
	assert.Equal(t, books.NewYear(1966), updated.Year)
	assert.Equal(t, "Dune", updated.Title)

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, " 978-0441013593 ", stored[2].ISBN, "isbn stored verbatim")
}

func TestServiceUpdate_UnknownIDLeavesStoreUnchanged(t *testing.T) {
	svc, mem := newTestService(t, seedShelf())

	_, err := svc.Update(context.Background(), "99", strings.NewReader(`{"title":"x"}`))
	assert.ErrorIs(t, err, books.ErrNotFound)

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seedShelf(), stored)
}

func TestServiceUpdate_UnparsableIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	_, err := svc.Update(context.Background(), "abc", strings.NewReader(`{"title":"x"}`))
	assert.ErrorIs(t, err, books.ErrNotFound)
}

func TestServiceUpdate_MalformedBody(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	_, err := svc.Update(context.Background(), "1", strings.NewReader(`{"title": `))
	assert.ErrorIs(t, err, books.ErrBadPayload)
}

// --- Delete ---

func TestServiceDelete_RemovesExactlyOne(t *testing.T) {
	svc, mem := newTestService(t, seedShelf())

	removed, err := svc.Delete(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "1984", removed.Title)

	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 1, stored[0].ID)
	assert.Equal(t, 3, stored[1].ID)

	// A follow-up lookup for the removed id is not-found.
	params := url.Values{}
	params.Set("id", "2")
	_, err = svc.List(context.Background(), params)
	assert.ErrorIs(t, err, books.ErrNotFound)
}

func TestServiceDelete_UnknownID(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	_, err := svc.Delete(context.Background(), "42")
	assert.ErrorIs(t, err, books.ErrNotFound)
}

func TestServiceDelete_UnparsableID(t *testing.T) {
	svc, _ := newTestService(t, seedShelf())

	_, err := svc.Delete(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, books.ErrNotFound)
}

// --- Store failure propagation ---

type failingStore struct{ err error }

func (f *failingStore) Load(context.Context) ([]books.Book, error) { return nil, f.err }
func (f *failingStore) Save(context.Context, []books.Book) error   { return f.err }

func TestServiceList_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := books.NewService(&failingStore{err: boom}, 10, nil)

	_, err := svc.List(context.Background(), url.Values{})
	assert.ErrorIs(t, err, boom)
}
