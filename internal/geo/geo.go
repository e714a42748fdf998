// Package geo provides the country-picker data sources: a remote
// country-name list (cached locally) and an IP-based country lookup.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const cacheFile = "countries.json"

// Client fetches country data from the configured collaborators.
type Client struct {
	countriesURL string
	ipinfoURL    string
	cacheDir     string
	http         *http.Client
	logger       *slog.Logger
}

func NewClient(countriesURL, ipinfoURL, cacheDir string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		countriesURL: countriesURL,
		ipinfoURL:    ipinfoURL,
		cacheDir:     cacheDir,
		http:         httpClient,
		logger:       logger,
	}
}

type countriesResponse struct {
	Data map[string]struct {
		Country string `json:"country"`
	} `json:"data"`
}

type ipInfo struct {
	Country string `json:"country"`
}

// Countries returns the sorted country-name list, serving from the
// local cache when present and fetching (then caching) otherwise.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	if cached, err := c.readCache(); err == nil && len(cached) > 0 {
		return cached, nil
	}

	body, err := c.get(ctx, c.countriesURL)
	if err != nil {
		return nil, fmt.Errorf("geo: fetch countries: %w", err)
	}

	var resp countriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("geo: decode countries: %w", err)
	}

	names := make([]string, 0, len(resp.Data))
	for _, v := range resp.Data {
		names = append(names, v.Country)
	}
	sort.Strings(names)

	if err := c.writeCache(names); err != nil {
		c.logger.Error("caching country list failed", "error", err)
	}
	return names, nil
}

// IPCountry returns the two-letter country code of the caller's IP.
func (c *Client) IPCountry(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.ipinfoURL)
	if err != nil {
		return "", fmt.Errorf("geo: fetch ip info: %w", err)
	}

	var info ipInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("geo: decode ip info: %w", err)
	}
	return info.Country, nil
}

// CountryByCode returns the first country name containing code, or ""
// when none matches.
func CountryByCode(countries []string, code string) string {
	if code == "" {
		return ""
	}
	for _, name := range countries {
		if strings.Contains(name, code) {
			return name
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) readCache() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, cacheFile))
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) writeCache(names []string) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return err
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.cacheDir, cacheFile), data, 0644)
}
