// Package register provides a client for the commercial-register portal
// backend API: company search, company cards, derived analytics, procurement
// history, ownership graphs, and SME (MVK) classification scenarios.
package register

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

// ErrNotFound marks a 404 from the register for a requested resource.
var ErrNotFound = eris.New("register: not found")

// Client defines the register backend operations.
type Client interface {
	// SearchCompanies queries the register full-text search.
	SearchCompanies(ctx context.Context, query string, opts ...SearchOption) ([]model.SearchHit, error)
	// GetCompany fetches the register's company card.
	GetCompany(ctx context.Context, regcode string) (*model.CompanyProfile, error)
	// GetScenario fetches the pre-computed MVK classification scenario.
	// Deliberately single-shot: no retries, and callers do not cancel an
	// in-flight fetch when the selection changes. A failed fetch means the
	// caller clears its working state.
	GetScenario(ctx context.Context, regcode string) (*mvk.Scenario, error)
	// GetAnalytics fetches server-derived analytics (trust score, red flags).
	GetAnalytics(ctx context.Context, regcode string) (*model.CompanyAnalytics, error)
	// GetProcurements fetches the company's public-procurement history.
	GetProcurements(ctx context.Context, regcode string) ([]model.Procurement, error)
	// GetOwnershipGraph fetches the ownership/control graph around a company.
	GetOwnershipGraph(ctx context.Context, regcode string) (*model.OwnershipGraph, error)
}

// SearchOption configures a search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	kind  model.EntityKind
	limit int
}

// WithKind restricts search results to companies or persons.
func WithKind(kind model.EntityKind) SearchOption {
	return func(o *searchOpts) {
		o.kind = kind
	}
}

// WithLimit caps the number of returned hits.
func WithLimit(n int) SearchOption {
	return func(o *searchOpts) {
		o.limit = n
	}
}

// Option configures the register client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a register API client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

func (c *httpClient) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "register: create request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes a single request, honoring the outbound rate limit.
func (c *httpClient) do(req *http.Request) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, 0, err
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, eris.Wrap(readErr, "register: read response body")
	}
	return body, resp.StatusCode, nil
}

// retryDo executes a request with exponential backoff on transient failures
// (429, 500, 502, 503). Used for idempotent lookups; the scenario fetch
// stays single-shot on purpose.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, err := c.do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		if retryableStatusCode(status) && attempt < maxAttempts {
			lastErr = eris.Errorf("register: status %d: %s", status, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, status, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) SearchCompanies(ctx context.Context, query string, opts ...SearchOption) ([]model.SearchHit, error) {
	so := &searchOpts{}
	for _, opt := range opts {
		opt(so)
	}

	q := url.Values{}
	q.Set("q", query)
	if so.kind != "" {
		q.Set("kind", string(so.kind))
	}
	if so.limit > 0 {
		q.Set("limit", strconv.Itoa(so.limit))
	}

	req, err := c.newRequest(ctx, "/api/v1/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	body, status, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "register: search request failed")
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("register: search unexpected status %d: %s", status, string(body))
	}

	var result struct {
		Hits []model.SearchHit `json:"hits"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "register: unmarshal search response")
	}
	return result.Hits, nil
}

func (c *httpClient) GetCompany(ctx context.Context, regcode string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/companies/%s", url.PathEscape(regcode)), &profile, true); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *httpClient) GetScenario(ctx context.Context, regcode string) (*mvk.Scenario, error) {
	var scenario mvk.Scenario
	// Single-shot fetch; see Client.GetScenario.
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/companies/%s/mvk-scenario", url.PathEscape(regcode)), &scenario, false); err != nil {
		return nil, err
	}
	// The one place payload defaults are applied.
	scenario.Normalize()
	return &scenario, nil
}

func (c *httpClient) GetAnalytics(ctx context.Context, regcode string) (*model.CompanyAnalytics, error) {
	var analytics model.CompanyAnalytics
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/companies/%s/analytics", url.PathEscape(regcode)), &analytics, true); err != nil {
		return nil, err
	}
	return &analytics, nil
}

func (c *httpClient) GetProcurements(ctx context.Context, regcode string) ([]model.Procurement, error) {
	var result struct {
		Procurements []model.Procurement `json:"procurements"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/companies/%s/procurements", url.PathEscape(regcode)), &result, true); err != nil {
		return nil, err
	}
	return result.Procurements, nil
}

func (c *httpClient) GetOwnershipGraph(ctx context.Context, regcode string) (*model.OwnershipGraph, error) {
	var graph model.OwnershipGraph
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/companies/%s/ownership-graph", url.PathEscape(regcode)), &graph, true); err != nil {
		return nil, err
	}
	return &graph, nil
}

// getJSON fetches a path and decodes the response into out.
func (c *httpClient) getJSON(ctx context.Context, path string, out any, retry bool) error {
	req, err := c.newRequest(ctx, path)
	if err != nil {
		return err
	}

	var (
		body   []byte
		status int
	)
	if retry {
		body, status, err = c.retryDo(ctx, req)
	} else {
		body, status, err = c.do(req)
	}
	if err != nil {
		return eris.Wrapf(err, "register: GET %s failed", path)
	}
	if status == http.StatusNotFound {
		return eris.Wrapf(ErrNotFound, "GET %s", path)
	}
	if status != http.StatusOK {
		return eris.Errorf("register: GET %s unexpected status %d: %s", path, status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "register: unmarshal %s", path)
	}
	return nil
}
