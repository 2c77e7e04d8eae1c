package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"gazette/internal/config"
	"gazette/internal/logging"
	"gazette/internal/paper"
	"gazette/internal/services"
)

const userAgent = "Gazette/0.1"

// Fetcher retrieves recent papers for a set of categories.
type Fetcher interface {
	FetchWindow(ctx context.Context, categories []string, start, end time.Time) ([]paper.Paper, error)
}

// Client queries the arXiv Atom API.
type Client struct {
	baseURL    string
	maxResults int
	delay      time.Duration
	http       *http.Client
	logger     *slog.Logger
}

// NewClient constructs an API client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Arxiv.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.Arxiv.BaseURL,
		maxResults: cfg.Arxiv.MaxResults,
		delay:      time.Duration(cfg.Arxiv.RequestDelay) * time.Second,
		http:       &http.Client{Timeout: timeout},
		logger:     logging.WithComponent(logger, "fetcher"),
	}
}

// FetchWindow queries each category and returns the papers published or
// updated within [start, end], merged and deduplicated by ID. A failing
// category contributes an empty result instead of aborting the fetch; a
// partial digest beats no digest. An empty category list yields an empty
// result, not an error.
func (c *Client) FetchWindow(ctx context.Context, categories []string, start, end time.Time) ([]paper.Paper, error) {
	var merged []paper.Paper

	for i, category := range categories {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		entries, err := c.queryCategory(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("category fetch failed, continuing with partial results",
				logging.String("category", category), logging.Error(err))
			continue
		}

		kept := 0
		for _, p := range entries {
			if inWindow(p, start, end) {
				merged = append(merged, p)
				kept++
			}
		}
		c.logger.Debug("category fetched",
			logging.String("category", category),
			logging.Int("results", len(entries)),
			logging.Int("in_window", kept))
	}

	return paper.Dedupe(merged), nil
}

func (c *Client) queryCategory(ctx context.Context, category string) ([]paper.Paper, error) {
	query := url.Values{}
	query.Set("search_query", "cat:"+category)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("max_results", fmt.Sprint(c.maxResults))

	endpoint := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "build request", category, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "query", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "fetch", "query", fmt.Sprintf("%s: http %s", category, resp.Status), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "read response", category, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "parse xml", category, err)
	}

	papers := make([]paper.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		p := parseEntry(entry)
		if p.ID == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// inWindow reports whether a paper was published or updated inside the
// lookback window.
func inWindow(p paper.Paper, start, end time.Time) bool {
	for _, ts := range []time.Time{p.Published, p.Updated} {
		if ts.IsZero() {
			continue
		}
		if !ts.Before(start) && !ts.After(end) {
			return true
		}
	}
	return false
}

var _ Fetcher = (*Client)(nil)
