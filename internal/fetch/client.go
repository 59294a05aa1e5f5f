// Package fetch implements the paginated API fetcher.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"brewlake/internal/domain"
)

// Client paginates a REST collection endpoint to completion. Pagination
// stops at the first empty page; there is no per-page retry — any network
// failure, non-2xx status, or decode error fails the whole fetch with a
// FetchError and the caller decides whether to abort the run.
type Client struct {
	baseURL  string
	pageSize int
	httpc    *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewClient creates a fetcher for the given collection endpoint. delay is
// the fixed inter-page pause enforced as a token-bucket rate limit; timeout
// bounds each page request.
func NewClient(baseURL string, pageSize int, timeout, delay time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpc:    &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		logger:   logger,
	}
}

// FetchAll requests pages starting at 1 until a page comes back empty and
// returns the concatenation of all pages in page order.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Record, error) {
	var all []domain.Record
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrFetch("rate limit wait: %v", err)
		}

		records, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
		c.logger.Debug("page fetched", "page", page, "records", len(records))
	}

	c.logger.Info("fetch complete", "url", c.baseURL, "records", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]domain.Record, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, domain.ErrFetch("parse base url %q: %v", c.baseURL, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.ErrFetch("build request for page %d: %v", page, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, domain.ErrFetch("page %d: %v", page, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrFetch("page %d: unexpected status %s", page, resp.Status)
	}

	var records []domain.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, domain.ErrFetch("page %d: decode response: %v", page, err)
	}
	return records, nil
}

// compile-time interface check
var _ domain.Fetcher = (*Client)(nil)

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("fetch.Client(%s, per_page=%d)", c.baseURL, c.pageSize)
}
