// Copyright 2026 Datamere Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package catalogue talks to the research-data catalogue: metadata records
// in four renderings, zipped data bundles and the raw datastore listing.
// All requests share one rate limiter so bulk ingestion stays polite.
package catalogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/datamere/ecosearch/core"
)

// ErrNotFound is returned when the catalogue answers 404 for a resource.
var ErrNotFound = errors.New("catalogue resource not found")

const userAgent = "ecosearch/1.0"

// Client fetches catalogue resources for one dataset at a time.
// Implementations must be safe for concurrent use.
type Client interface {
	// FetchMetadata retrieves one metadata rendering of a dataset.
	FetchMetadata(ctx context.Context, fileIdentifier string, format core.MetadataFormat) ([]byte, error)

	// FetchDataBundle retrieves the primary zipped data bundle.
	FetchDataBundle(ctx context.Context, fileIdentifier string) ([]byte, error)

	// FetchSupportingBundle retrieves the supporting-documents bundle,
	// the fallback when no primary bundle exists.
	FetchSupportingBundle(ctx context.Context, fileIdentifier string) ([]byte, error)

	// ListDirectory scrapes the datastore directory listing, the last
	// resort when neither bundle exists.
	ListDirectory(ctx context.Context, fileIdentifier string) ([]Link, error)

	// Download fetches an absolute URL discovered via ListDirectory.
	Download(ctx context.Context, url string) ([]byte, error)
}

// Link is one file discovered in a datastore directory listing.
type Link struct {
	Name string
	URL  string
}

// HTTPClient implements Client against the live catalogue.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithRequestsPerSecond caps the request rate. Default 4/s with burst 2.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *HTTPClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 2)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.log = log.With("component", "catalogue")
	}
}

// NewHTTPClient builds a client rooted at the catalogue base URL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 2),
		log:     slog.Default().With("component", "catalogue"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// metadataURL maps a format to its catalogue rendering endpoint. The XML
// rendering lives in the GEMINI web-accessible folder; the other three are
// content negotiations on the document endpoint.
func (c *HTTPClient) metadataURL(fileIdentifier string, format core.MetadataFormat) (string, error) {
	switch format {
	case core.FormatISO19115XML:
		return fmt.Sprintf("%s/gemini/waf/%s.xml", c.baseURL, fileIdentifier), nil
	case core.FormatJSONExpanded:
		return fmt.Sprintf("%s/documents/%s?format=json", c.baseURL, fileIdentifier), nil
	case core.FormatSchemaOrgJSONLD:
		return fmt.Sprintf("%s/documents/%s?format=schema.org", c.baseURL, fileIdentifier), nil
	case core.FormatRDFTurtle:
		return fmt.Sprintf("%s/documents/%s?format=ttl", c.baseURL, fileIdentifier), nil
	default:
		return "", fmt.Errorf("%w: %d", core.ErrInvalidFormat, format)
	}
}

// FetchMetadata retrieves one metadata rendering.
func (c *HTTPClient) FetchMetadata(ctx context.Context, fileIdentifier string, format core.MetadataFormat) ([]byte, error) {
	url, err := c.metadataURL(fileIdentifier, format)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, url)
}

// FetchDataBundle retrieves /data/{id}.zip.
func (c *HTTPClient) FetchDataBundle(ctx context.Context, fileIdentifier string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/data/%s.zip", c.baseURL, fileIdentifier))
}

// FetchSupportingBundle retrieves /sd/{id}.zip.
func (c *HTTPClient) FetchSupportingBundle(ctx context.Context, fileIdentifier string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/sd/%s.zip", c.baseURL, fileIdentifier))
}

// ListDirectory scrapes /datastore/eidchub/{id}/ for file links.
func (c *HTTPClient) ListDirectory(ctx context.Context, fileIdentifier string) ([]Link, error) {
	base := fmt.Sprintf("%s/datastore/eidchub/%s/", c.baseURL, fileIdentifier)
	page, err := c.get(ctx, base)
	if err != nil {
		return nil, err
	}
	return parseListing(base, page), nil
}

// Download fetches an absolute URL.
func (c *HTTPClient) Download(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

func (c *HTTPClient) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.log.Debug("fetching", "url", url)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalogue: %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalogue: reading %s: %w", url, err)
	}
	return body, nil
}
