package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpattn/adminkit/internal/domain"
)

// DetailURL returns the URL of one record under resourceURL.
func (p *Provider) DetailURL(resourceURL, id string) string {
	base := p.resolve(resourceURL)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(id) + "/"
}

// Get fetches one record.
func (p *Provider) Get(ctx context.Context, resourceURL, id string) (domain.Record, error) {
	var record domain.Record
	if err := p.do(ctx, http.MethodGet, p.DetailURL(resourceURL, id), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update sends the writable part of record as a partial update and
// returns the record as stored by the backend. Field errors come back as
// *ValidationError.
func (p *Provider) Update(ctx context.Context, resourceURL, id string, record domain.Record) (domain.Record, error) {
	body, err := json.Marshal(p.policy.Payload(record))
	if err != nil {
		return nil, fmt.Errorf("failed to encode update payload: %w", err)
	}

	var updated domain.Record
	if err := p.do(ctx, http.MethodPatch, p.DetailURL(resourceURL, id), bytes.NewReader(body), &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Create posts the writable part of record to resourceURL and returns the
// record as stored by the backend.
func (p *Provider) Create(ctx context.Context, resourceURL string, record domain.Record) (domain.Record, error) {
	body, err := json.Marshal(p.policy.Payload(record))
	if err != nil {
		return nil, fmt.Errorf("failed to encode create payload: %w", err)
	}

	var created domain.Record
	if err := p.do(ctx, http.MethodPost, p.resolve(resourceURL), bytes.NewReader(body), &created); err != nil {
		return nil, err
	}
	return created, nil
}
