package catalog

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

func pageHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		fmt.Fprintf(w, `{"docs": [{"key": "/works/OL%sW", "title": "Book at %s"}]}`, offset, offset)
	}
}

func TestFetchAdvancesOffset(t *testing.T) {
	c, srv := newTestClient(pageHandler(t))
	defer srv.Close()
	s := NewSearcher(c, 1)

	ctx := context.Background()
	first, err := s.Fetch(ctx, "dune", false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := s.Fetch(ctx, "dune", false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("expected accumulation 1 then 2, got %d then %d", len(first), len(second))
	}
	if second[0].ID != "/works/OL0W" || second[1].ID != "/works/OL1W" {
		t.Errorf("pages out of order: %+v", second)
	}
}

func TestFetchRefreshResets(t *testing.T) {
	c, srv := newTestClient(pageHandler(t))
	defer srv.Close()
	s := NewSearcher(c, 1)

	ctx := context.Background()
	s.Fetch(ctx, "dune", false)
	s.Fetch(ctx, "dune", false)

	books, err := s.Fetch(ctx, "dune", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].ID != "/works/OL0W" {
		t.Errorf("refresh must restart from offset 0, got %+v", books)
	}
}

func TestFetchNewQueryResets(t *testing.T) {
	c, srv := newTestClient(pageHandler(t))
	defer srv.Close()
	s := NewSearcher(c, 1)

	ctx := context.Background()
	s.Fetch(ctx, "dune", false)
	s.Fetch(ctx, "dune", false)

	books, err := s.Fetch(ctx, "emma", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 {
		t.Errorf("query change must discard accumulated results, got %d", len(books))
	}
	if s.Query() != "emma" {
		t.Errorf("Query() = %q, want emma", s.Query())
	}
}

func TestFetchFailurePreservesResults(t *testing.T) {
	fail := false
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		pageHandler(t)(w, r)
	})
	defer srv.Close()
	s := NewSearcher(c, 1)

	ctx := context.Background()
	if _, err := s.Fetch(ctx, "dune", false); err != nil {
		t.Fatal(err)
	}

	fail = true
	if _, err := s.Fetch(ctx, "dune", false); err == nil {
		t.Fatal("expected failing fetch to error")
	}

	books := s.Books()
	if len(books) != 1 {
		t.Errorf("failed fetch must leave prior results intact, got %d", len(books))
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("title") == "slow" {
			close(started)
			<-release
			w.Write([]byte(`{"docs": [{"key": "/works/OLstaleW", "title": "Stale"}]}`))
			return
		}
		w.Write([]byte(`{"docs": [{"key": "/works/OLfreshW", "title": "Fresh"}]}`))
	})
	defer srv.Close()
	s := NewSearcher(c, 10)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Starts first but completes last.
		s.Fetch(ctx, "slow", true)
	}()

	// Supersede the request once it is in flight.
	<-started
	if _, err := s.Fetch(ctx, "fresh", true); err != nil {
		t.Fatal(err)
	}

	close(release)
	<-done

	books := s.Books()
	if len(books) != 1 || books[0].ID != "/works/OLfreshW" {
		t.Errorf("stale completion must be discarded, got %+v", books)
	}
}

func sortFixture() *Searcher {
	s := NewSearcher(NewClient("https://example.org", "", nil, testLogger()), 10)
	s.books = []Book{
		{ID: "1", Title: "B", RatingAverage: 3.0, RatingCount: 10},
		{ID: "2", Title: "A", RatingAverage: 5.0, RatingCount: 10},
	}
	return s
}

func titles(books []Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestSortByRating(t *testing.T) {
	s := sortFixture()
	s.SortByRating()
	if got := titles(s.Books()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("SortByRating order = %v, want [A B]", got)
	}
	// Idempotent
	s.SortByRating()
	if got := titles(s.Books()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("re-sort changed order: %v", got)
	}
}

func TestSortByTitle(t *testing.T) {
	s := sortFixture()
	s.SortByRating()
	s.SortByTitle()
	if got := titles(s.Books()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("SortByTitle order = %v, want [A B]", got)
	}
}

func TestSortByHitsStableOnTies(t *testing.T) {
	s := sortFixture()
	// Both rating counts are equal; original relative order must hold.
	s.SortByHits()
	if got := titles(s.Books()); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("tied sort must preserve original order, got %v", got)
	}
}
