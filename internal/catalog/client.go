// Package catalog queries the Open Library search API and normalizes
// its documents into canonical Book records.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrEmptyQuery means Search was called with a blank query.
	ErrEmptyQuery = errors.New("catalog: empty search query")
	// ErrDecode means the response body did not match the expected shape.
	ErrDecode = errors.New("catalog: malformed search response")
)

// Book is a normalized search result. It is transient: it lives for the
// current search session and is never persisted as-is.
type Book struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
	CoverID       string  `json:"coverID"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	RatingsAverage *float64 `json:"ratings_average"`
	RatingsCount   *int     `json:"ratings_count"`
	CoverID        coverID  `json:"cover_i"`
}

// coverID handles the cover_i field, which the API serves as either a
// string or an integer. It is resolved to its decimal string form at
// decode time and never leaves this package as a union.
type coverID string

func (c *coverID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = coverID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cover_i is neither string nor integer: %w", err)
	}
	*c = coverID(strconv.FormatInt(n, 10))
	return nil
}

func (d searchDoc) book() Book {
	b := Book{
		ID:      d.Key,
		Title:   d.Title,
		CoverID: string(d.CoverID),
	}
	if d.RatingsAverage != nil {
		b.RatingAverage = *d.RatingsAverage
	}
	if d.RatingsCount != nil {
		b.RatingCount = *d.RatingsCount
	}
	return b
}

// Client calls the catalog's title-search endpoint.
type Client struct {
	baseURL   string
	coversURL string
	http      *http.Client
	logger    *slog.Logger
}

func NewClient(baseURL, coversURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		coversURL: strings.TrimRight(coversURL, "/"),
		http:      httpClient,
		logger:    logger,
	}
}

// Search looks up books whose title matches query, returning one page
// of normalized results. Transport and decode failures are reported to
// the caller; the client holds no result state of its own.
func (c *Client) Search(ctx context.Context, query string, offset, limit int) ([]Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	q := url.Values{}
	q.Set("title", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	reqURL := c.baseURL + "/search.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("search request failed", "query", query, "error", err)
		return nil, fmt.Errorf("catalog: search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Error("search returned non-OK status", "query", query, "status", resp.StatusCode)
		return nil, fmt.Errorf("catalog: search %q: unexpected status %d", query, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		c.logger.Error("search response decode failed", "query", query, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	books := make([]Book, 0, len(sr.Docs))
	for _, doc := range sr.Docs {
		books = append(books, doc.book())
	}
	return books, nil
}

// CoverURL returns the cover image URL for a cover id at the given size
// ("S", "M" or "L"), or "" when the book has no cover.
func (c *Client) CoverURL(coverID, size string) string {
	if coverID == "" {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%s-%s.jpg", c.coversURL, coverID, size)
}

// BookURL returns the catalog page for a book id (an Open Library key
// such as "/works/OL45883W").
func (c *Client) BookURL(id string) string {
	if id == "" {
		return ""
	}
	if !strings.HasPrefix(id, "/") {
		id = "/" + id
	}
	return c.baseURL + id
}
