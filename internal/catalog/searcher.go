package catalog

import (
	"context"
	"sort"
	"sync"
)

// Searcher accumulates paginated results for one query session. It is
// safe for concurrent use: fetches run without holding the lock, and a
// generation counter makes sure only the most recent logical request
// applies its results, so an out-of-order completion is discarded
// instead of clobbering newer state.
type Searcher struct {
	client   *Client
	pageSize int

	mu     sync.Mutex
	query  string
	offset int
	gen    uint64
	books  []Book
}

func NewSearcher(client *Client, pageSize int) *Searcher {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Searcher{client: client, pageSize: pageSize}
}

// Fetch retrieves the next page for query and appends it to the result
// set. When refresh is true, or the query changed, the offset resets to
// zero and accumulated results are discarded before the new page lands.
// On failure the previous result set is left intact.
func (s *Searcher) Fetch(ctx context.Context, query string, refresh bool) ([]Book, error) {
	s.mu.Lock()
	if refresh || query != s.query {
		s.gen++
		s.query = query
		s.offset = 0
		s.books = nil
	}
	gen := s.gen
	offset := s.offset
	s.mu.Unlock()

	page, err := s.client.Search(ctx, query, offset, s.pageSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A refresh or a new query superseded this request while it
		// was in flight; last request wins.
		return s.snapshot(), nil
	}
	s.books = append(s.books, page...)
	s.offset += len(page)
	return s.snapshot(), nil
}

// Books returns a copy of the accumulated result set.
func (s *Searcher) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Query returns the query of the current search session.
func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SortByTitle sorts the result set by title, ascending. Stable, in
// place, idempotent.
func (s *Searcher) SortByTitle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.books, func(i, j int) bool {
		return s.books[i].Title < s.books[j].Title
	})
}

// SortByRating sorts the result set by average rating, descending.
func (s *Searcher) SortByRating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.books, func(i, j int) bool {
		return s.books[i].RatingAverage > s.books[j].RatingAverage
	})
}

// SortByHits sorts the result set by rating count, descending.
func (s *Searcher) SortByHits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.books, func(i, j int) bool {
		return s.books[i].RatingCount > s.books[j].RatingCount
	})
}

func (s *Searcher) snapshot() []Book {
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}
