package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/index"
)

func TestEnsureCollection(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	require.NoError(t, client.EnsureCollection(context.Background(), 384))

	assert.Equal(t, "PUT /collections/research_data", gotPath)
	vectors := gotBody["vectors"].(map[string]any)
	assert.EqualValues(t, 384, vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureCollection_ServerDown(t *testing.T) {
	client := NewClient(Config{URL: "http://127.0.0.1:1"})
	err := client.EnsureCollection(context.Background(), 384)
	assert.ErrorIs(t, err, index.ErrCollectionUnavailable)
}

func TestUpsert_EmptyBatchDoesNotCallServer(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	require.NoError(t, client.Upsert(context.Background(), nil))
	assert.Zero(t, calls, "empty upsert must not touch the index")
}

func TestUpsert_PointShape(t *testing.T) {
	var gotQuery string
	var gotBody struct {
		Points []struct {
			Id      uint64         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Collection: "custom"})
	vector := core.EmbeddingVector{
		Id:             42,
		SourceId:       7,
		FileIdentifier: "abc",
		SourceType:     core.SourceDocumentContent,
		TextContent:    "rainfall readings",
		Vector:         []float32{0.1, 0.2},
		Title:          "Rainfall Survey",
	}
	require.NoError(t, client.Upsert(context.Background(), []core.EmbeddingVector{vector}))

	assert.Equal(t, "wait=true", gotQuery)
	require.Len(t, gotBody.Points, 1)
	point := gotBody.Points[0]
	assert.EqualValues(t, 42, point.Id)
	assert.Equal(t, "7", point.Payload["source_id"])
	assert.Equal(t, "document-content", point.Payload["source_type"])
	assert.Equal(t, "rainfall readings", point.Payload["text_content"])
	assert.Equal(t, "Rainfall Survey", point.Payload["title"])
}

func TestSearch(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.91,
					"payload": map[string]any{
						"source_id":       "7",
						"file_identifier": "abc",
						"source_type":     "document-content",
						"text_content":    "rainfall readings",
						"title":           "Rainfall Survey",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	results, err := client.Search(context.Background(), index.Query{
		Vector:     []float32{0.1, 0.2},
		Limit:      3,
		SourceType: core.SourceDocumentContent,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 3, gotBody["limit"])
	assert.Equal(t, true, gotBody["with_payload"])
	require.Contains(t, gotBody, "filter", "source type must narrow the search")

	require.Len(t, results, 1)
	assert.EqualValues(t, 7, results[0].SourceId)
	assert.Equal(t, "abc", results[0].FileIdentifier)
	assert.Equal(t, "rainfall readings", results[0].Text)
	assert.InDelta(t, 0.91, results[0].Score, 1e-6)
	assert.Equal(t, "Rainfall Survey", results[0].Metadata["title"])
}

func TestSearch_NoFilterByDefault(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	_, err := client.Search(context.Background(), index.Query{Vector: []float32{0.1}, Limit: 1})
	require.NoError(t, err)
	assert.NotContains(t, gotBody, "filter")
}
