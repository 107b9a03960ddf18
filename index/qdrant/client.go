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


// Package qdrant implements index.VectorIndex over Qdrant's REST API with
// cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/index"
)

// DefaultCollection is the collection name the catalogue pipeline uses.
const DefaultCollection = "research_data"

// Client is a minimal REST client to Qdrant.
type Client struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	log        *slog.Logger
}

var _ index.VectorIndex = (*Client)(nil)

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewClient builds a client. The zero Collection defaults to
// DefaultCollection and the zero Timeout to 15s.
func NewClient(cfg Config) *Client {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        slog.Default().With("component", "qdrant"),
	}
}

// EnsureCollection creates the collection with cosine distance. Qdrant
// answers 200 when the collection already exists with the same schema, so
// the call is idempotent.
func (c *Client) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", index.ErrCollectionUnavailable, dimensions)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if err := c.putJSON(ctx, fmt.Sprintf("%s/collections/%s", c.url, c.collection), body); err != nil {
		return fmt.Errorf("%w: %v", index.ErrCollectionUnavailable, err)
	}
	return nil
}

// Upsert writes the vectors with their payloads. Point ids are the numeric
// vector ids, so re-ingesting a source overwrites its previous points.
func (c *Client) Upsert(ctx context.Context, vectors []core.EmbeddingVector) error {
	if len(vectors) == 0 {
		return nil
	}

	points := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		points[i] = map[string]any{
			"id":     uint64(v.Id),
			"vector": v.Vector,
			"payload": map[string]any{
				"source_id":       strconv.FormatUint(uint64(v.SourceId), 10),
				"file_identifier": v.FileIdentifier,
				"source_type":     v.SourceType.String(),
				"text_content":    v.TextContent,
				"title":           v.Title,
				"abstract":        v.Abstract,
				"authors":         v.Authors,
				"keywords":        v.Keywords,
			},
		}
	}

	c.log.Debug("upserting points", "count", len(points), "collection", c.collection)
	return c.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", c.url, c.collection), map[string]any{"points": points})
}

// Search runs a similarity query, optionally filtered to one source type.
func (c *Client) Search(ctx context.Context, query index.Query) ([]core.VectorSearchResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	req := map[string]any{
		"vector":       query.Vector,
		"limit":        limit,
		"with_payload": true,
	}
	if query.SourceType != 0 {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "source_type", "match": map[string]any{"value": query.SourceType.String()}},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", c.url, c.collection), req, &resp); err != nil {
		return nil, err
	}

	results := make([]core.VectorSearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		result := core.VectorSearchResult{
			Score:    hit.Score,
			Metadata: map[string]string{},
		}
		for key, value := range hit.Payload {
			text, ok := value.(string)
			if !ok {
				continue
			}
			switch key {
			case "source_id":
				if id, err := strconv.ParseUint(text, 10, 64); err == nil {
					result.SourceId = core.ID(id)
				}
			case "file_identifier":
				result.FileIdentifier = text
			case "text_content":
				result.Text = text
			default:
				result.Metadata[key] = text
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) putJSON(ctx context.Context, url string, body any) error {
	return c.sendJSON(ctx, http.MethodPut, url, body, nil)
}

func (c *Client) postJSON(ctx context.Context, url string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, url, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
