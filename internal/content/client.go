// Package content is the HTTP client for the external headless content
// store. Every persistent read and write in the system goes through it.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/leanttro/storefront/internal/domain"
)

// Filter operators understood by the content store's query language.
const (
	OpEq        = "_eq"
	OpIContains = "_icontains"
)

// Config holds client connection settings.
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds every outbound call so a stalled upstream cannot pin
	// request handlers indefinitely.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls; zero disables the
	// client-side limiter.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to one content-store instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter

	// OnResult, when set, observes the outcome of every call. Used to feed
	// the metrics collector without the client depending on it.
	OnResult func(method, collection string, status int, err error)
}

// New creates a Client. The base URL is stored without a trailing slash so
// path concatenation stays predictable.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// BaseURL returns the configured content-store base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Filter is one field condition.
type Filter struct {
	Field string
	Op    string
	Value string
}

// Query describes a list request: conjunctive filters plus sort, limit, and
// field selection.
type Query struct {
	Filters []Filter
	Sort    string
	Limit   int
	Fields  string
}

// Eq appends an equality filter.
func (q Query) Eq(field, value string) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: OpEq, Value: value})
	return q
}

// Contains appends a case-insensitive substring filter.
func (q Query) Contains(field, value string) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: OpIContains, Value: value})
	return q
}

func (q Query) encode() string {
	v := url.Values{}
	for _, f := range q.Filters {
		v.Set(fmt.Sprintf("filter[%s][%s]", f.Field, f.Op), f.Value)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Fields != "" {
		v.Set("fields", q.Fields)
	}
	return v.Encode()
}

// List fetches records of a collection into out, which must be a pointer to
// a slice.
func (c *Client) List(ctx context.Context, collection string, q Query, out any) error {
	path := "/items/" + collection
	if encoded := q.encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := c.do(ctx, http.MethodGet, path, collection, nil, "")
	if err != nil {
		return fmt.Errorf("content.List %s: %w", collection, err)
	}

	if err := decodeData(body, out); err != nil {
		return fmt.Errorf("content.List %s: %w", collection, err)
	}
	return nil
}

// Create inserts a record. When out is non-nil the created record is
// decoded into it.
func (c *Client) Create(ctx context.Context, collection string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("content.Create %s: encode: %w", collection, err)
	}

	body, err := c.do(ctx, http.MethodPost, "/items/"+collection, collection, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return fmt.Errorf("content.Create %s: %w", collection, err)
	}

	if out != nil {
		if err := decodeData(body, out); err != nil {
			return fmt.Errorf("content.Create %s: %w", collection, err)
		}
	}
	return nil
}

// Update patches a record by ID. Only fields present in the payload change.
func (c *Client) Update(ctx context.Context, collection string, id domain.ID, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("content.Update %s: encode: %w", collection, err)
	}

	path := "/items/" + collection + "/" + url.PathEscape(id.String())
	if _, err := c.do(ctx, http.MethodPatch, path, collection, bytes.NewReader(encoded), "application/json"); err != nil {
		return fmt.Errorf("content.Update %s: %w", collection, err)
	}
	return nil
}

// Delete removes a record by ID.
func (c *Client) Delete(ctx context.Context, collection string, id domain.ID) error {
	path := "/items/" + collection + "/" + url.PathEscape(id.String())
	if _, err := c.do(ctx, http.MethodDelete, path, collection, nil, ""); err != nil {
		return fmt.Errorf("content.Delete %s: %w", collection, err)
	}
	return nil
}

// AssetURL resolves a file reference to a displayable URL. Absolute URLs
// pass through verbatim; bare IDs resolve against the store's asset path.
func (c *Client) AssetURL(ref domain.FileRef) string {
	if ref.IsZero() {
		return ""
	}
	if ref.IsURL() {
		return string(ref)
	}
	return c.baseURL + "/assets/" + string(ref)
}

func (c *Client) do(ctx context.Context, method, path, collection string, body io.Reader, contentType string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, collection, 0, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		c.observe(method, collection, resp.StatusCode, err)
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}

	c.observe(method, collection, resp.StatusCode, nil)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(payload, 200))
	}

	return payload, nil
}

func (c *Client) observe(method, collection string, status int, err error) {
	if c.OnResult != nil {
		c.OnResult(method, collection, status, err)
	}
}

// decodeData unwraps the store's {"data": ...} envelope.
func decodeData(body []byte, out any) error {
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
