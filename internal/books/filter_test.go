package books

import (
	"errors"
	"net/url"
	"testing"
)

func testShelf() []Book {
	return []Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Year: NewYear(1925)},
		{ID: 2, Title: "1984", Author: "George Orwell", Year: NewYear(1949), ISBN: "978-0452284234"},
		{ID: 3, Title: "Animal Farm", Author: "George Orwell", Year: NewYear(1945)},
		{ID: 4, Title: "Dune", Author: "Frank Herbert", Year: NewYear(1965)},
		{ID: 5, Title: "Untitled Draft", Author: "Frank Herbert"},
	}
}

func filterOf(key, value string) url.Values {
	v := url.Values{}
	v.Set(key, value)
	return v
}

func TestApplyFilters_IDExactMatch(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("id", "5"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// Exact integer match, not substring: id=5 must not match id 15 style values.
	if got[0].ID != 5 {
		t.Errorf("ID = %d, want 5", got[0].ID)
	}
}

func TestApplyFilters_YearExactMatch(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("year", "1949"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 1 || got[0].Title != "1984" {
		t.Fatalf("got %v, want just 1984", got)
	}
}

func TestApplyFilters_UnsetYearNeverMatches(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("year", "0"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 (unset year must not match 0)", len(got))
	}
}

func TestApplyFilters_AuthorCaseInsensitiveSubstring(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("author", "ORWELL"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, b := range got {
		if b.Author != "George Orwell" {
			t.Errorf("Author = %q, want George Orwell", b.Author)
		}
	}
}

func TestApplyFilters_TrimsWhitespaceAndOneQuoteLayer(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("author", `  "orwell"  `))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestApplyFilters_Conjunctive(t *testing.T) {
	v := url.Values{}
	v.Set("author", "orwell")
	v.Set("year", "1945")

	got, err := ApplyFilters(testShelf(), v)
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Animal Farm" {
		t.Fatalf("got %v, want just Animal Farm", got)
	}
}

func TestApplyFilters_PreservesOrder(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("author", "herbert"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 5 {
		t.Errorf("got ids %v, want storage order [4 5]", []int{got[0].ID, got[1].ID})
	}
}

func TestApplyFilters_InvalidIntegerFilter(t *testing.T) {
	_, err := ApplyFilters(testShelf(), filterOf("year", "nineteen"))
	var invalid *InvalidFilterValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("ApplyFilters = %v, want InvalidFilterValueError", err)
	}
	if invalid.Field != "year" {
		t.Errorf("Field = %q, want year", invalid.Field)
	}
}

func TestApplyFilters_ISBNSubstring(t *testing.T) {
	got, err := ApplyFilters(testShelf(), filterOf("isbn", "0452284234"))
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %v, want just id 2", got)
	}
}

func TestApplyFilters_NoFilters(t *testing.T) {
	got, err := ApplyFilters(testShelf(), url.Values{})
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestFilterParams_DropsPagination(t *testing.T) {
	v := url.Values{}
	v.Set("author", "orwell")
	v.Set("page", "2")
	v.Set("limit", "5")

	filters := FilterParams(v)
	if filters.Has("page") || filters.Has("limit") {
		t.Error("pagination keys leaked into the filter set")
	}
	if filters.Get("author") != "orwell" {
		t.Errorf("author = %q, want orwell", filters.Get("author"))
	}
}
