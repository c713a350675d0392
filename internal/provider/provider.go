// Package provider talks to Django-REST style resource endpoints on behalf
// of list and detail views.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/query"
)

// DefaultPageSize is assumed when neither the backend nor the caller
// reports a page size.
const DefaultPageSize = 20

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// FilterableProvider builds list queries.
type FilterableProvider interface {
	FilterQuery(f domain.Filter) (string, string)
	URL(resourceURL string, resourceFilters []domain.Filter, tableFilters []domain.TableFilter) string
}

// ListableProvider fetches list pages.
type ListableProvider interface {
	GetList(ctx context.Context, resourceURL string, resourceFilters []domain.Filter, tableFilters []domain.TableFilter, page int) (ListResult, error)
}

// DetailProvider reads and updates single records.
type DetailProvider interface {
	Get(ctx context.Context, resourceURL, id string) (domain.Record, error)
	Update(ctx context.Context, resourceURL, id string, record domain.Record) (domain.Record, error)
}

// Provider is bound to one backend base URL.
type Provider struct {
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	pageSize int
	timeout  time.Duration
	policy   domain.FieldPolicy
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPageSize sets the page size assumed when the backend omits it.
func WithPageSize(size int) Option {
	return func(p *Provider) {
		if size > 0 {
			p.pageSize = size
		}
	}
}

// WithFieldPolicy sets which fields are sent on update.
func WithFieldPolicy(policy domain.FieldPolicy) Option {
	return func(p *Provider) {
		p.policy = policy
	}
}

// WithTimeout bounds every request made by the provider's client,
// whichever client is configured.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// New creates a provider for baseURL.
func New(baseURL string, opts ...Option) *Provider {
	p := &Provider{
		baseURL:  baseURL,
		client:   &http.Client{},
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout > 0 {
		clone := *p.client
		clone.Timeout = p.timeout
		p.client = &clone
	}
	return p
}

// BaseURL returns the configured base URL.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// Policy returns the field policy used on update.
func (p *Provider) Policy() domain.FieldPolicy {
	return p.policy
}

// FilterQuery implements FilterableProvider.
func (p *Provider) FilterQuery(f domain.Filter) (string, string) {
	return query.FilterQuery(f)
}

// URL implements FilterableProvider.
func (p *Provider) URL(resourceURL string, resourceFilters []domain.Filter, tableFilters []domain.TableFilter) string {
	return query.URL(resourceURL, resourceFilters, tableFilters)
}

// resolve joins a relative resource URL onto the base URL.
func (p *Provider) resolve(resourceURL string) string {
	if strings.HasPrefix(resourceURL, "http://") || strings.HasPrefix(resourceURL, "https://") {
		return resourceURL
	}
	if p.baseURL == "" {
		return resourceURL
	}
	if resourceURL == "" {
		return p.baseURL
	}
	return strings.TrimRight(p.baseURL, "/") + "/" + strings.TrimLeft(resourceURL, "/")
}

// do sends a request and decodes a JSON response into out.
func (p *Provider) do(ctx context.Context, method, target string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("[HTTP] request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.String("requestId", requestID),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	p.logger.Debug("[HTTP] request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("requestId", requestID))

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newResponseError(method, target, resp.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}
