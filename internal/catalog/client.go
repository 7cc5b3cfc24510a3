package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageDelay is the pause between consecutive page requests of one query.
const DefaultPageDelay = 500 * time.Millisecond

// PageObserver receives per-page fetch results, typically for metrics.
type PageObserver interface {
	ObservePage(items int)
	ObserveUpstreamError(statusCode int)
}

// ClientConfig holds settings for the catalog client.
type ClientConfig struct {
	Endpoint  string
	Token     string
	Timeout   time.Duration
	PageDelay time.Duration
	Logger    *slog.Logger
	Observer  PageObserver
}

// Client fetches the paginated product catalog from the upstream API.
type Client struct {
	endpoint   string
	token      string
	pageDelay  time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	observer   PageObserver
}

// NewClient creates a new catalog client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		token:     cfg.Token,
		pageDelay: cfg.PageDelay,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:   logger.With("component", "catalog_client"),
		observer: cfg.Observer,
	}
}

// page is the upstream response envelope for one page. PageCount is left
// untyped since the upstream may send it as a number, a string or empty.
type page struct {
	Data      []RawItem `json:"data"`
	PageCount any       `json:"pageCount"`
}

// pageCount reports the page total carried by p. Absent, empty, zero and
// malformed values report false so the caller keeps its previous total.
func (p *page) pageCount() (int, bool) {
	var n int64
	var err error
	switch v := p.PageCount.(type) {
	case json.Number:
		n, err = v.Int64()
		if err != nil {
			var f float64
			f, err = v.Float64()
			n = int64(f)
		}
	case string:
		n, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, false
	}
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}

// FetchAll retrieves every item matching q. A comma-separated category filter
// runs one full paginated fetch per category and concatenates the results in
// the order the categories were listed.
func (c *Client) FetchAll(ctx context.Context, q Query) ([]RawItem, error) {
	var all []RawItem
	for _, sub := range q.Split() {
		items, err := c.fetchQuery(ctx, sub)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}

	c.logger.Info("catalog fetch complete", "items", len(all))
	return all, nil
}

// fetchQuery walks the pages of a single-category query.
func (c *Client) fetchQuery(ctx context.Context, q Query) ([]RawItem, error) {
	if q.Page > 0 {
		p, err := c.fetchPage(ctx, q.Params(q.Page))
		if err != nil {
			return nil, err
		}
		c.logger.Info("fetched catalog page",
			"category", q.Category, "page", q.Page, "items", len(p.Data))
		return p.Data, nil
	}

	var items []RawItem
	pageCount := 1
	for current := 1; current <= pageCount; {
		p, err := c.fetchPage(ctx, q.Params(current))
		if err != nil {
			return nil, err
		}

		if n, ok := p.pageCount(); ok {
			pageCount = n
		}
		items = append(items, p.Data...)
		c.logger.Info("fetched catalog page",
			"category", q.Category, "page", current, "pageCount", pageCount, "items", len(p.Data))

		current++
		if current <= pageCount {
			if err := wait(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}
	}
	return items, nil
}

// fetchPage issues one GET for the given parameters.
func (c *Client) fetchPage(ctx context.Context, params url.Values) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = merge(req.URL.Query(), params).Encode()
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&UpstreamError{Params: params, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&UpstreamError{StatusCode: resp.StatusCode, Params: params, Err: fmt.Errorf("failed to read response body: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&UpstreamError{StatusCode: resp.StatusCode, Body: string(body), Params: params})
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var p page
	if err := dec.Decode(&p); err != nil {
		return nil, c.fail(&UpstreamError{StatusCode: resp.StatusCode, Body: string(body), Params: params, Err: fmt.Errorf("failed to decode response: %w", err)})
	}

	if c.observer != nil {
		c.observer.ObservePage(len(p.Data))
	}
	return &p, nil
}

// fail logs the full diagnostic context of an upstream failure and returns it.
func (c *Client) fail(e *UpstreamError) error {
	c.logger.Error("catalog request failed",
		"status", e.StatusCode,
		"body", e.Body,
		"params", e.Params.Encode(),
		"endpoint", c.endpoint,
		"error", e.Err)
	if c.observer != nil {
		c.observer.ObserveUpstreamError(e.StatusCode)
	}
	return e
}

// merge overlays params onto any query string already present on the endpoint.
func merge(existing, params url.Values) url.Values {
	for k, v := range params {
		existing[k] = v
	}
	return existing
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
