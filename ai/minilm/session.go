package minilm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Session runs the transformer over tokenized batches and returns
// token-level embeddings, one [sequence][dimensions] matrix per input row.
type Session interface {
	Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) ([][][]float32, error)
	Dimensions() int
	Close() error
}

// HTTPSession talks to an inference server that exposes the raw token
// embeddings of a MiniLM checkpoint.
type HTTPSession struct {
	endpoint   string
	dimensions int
	client     *http.Client
}

// NewHTTPSession builds a session against an inference endpoint.
func NewHTTPSession(endpoint string, dimensions int) *HTTPSession {
	return &HTTPSession{
		endpoint:   endpoint,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

type inferenceRequest struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
	TokenTypeIDs  [][]int64 `json:"token_type_ids"`
}

type inferenceResponse struct {
	TokenEmbeddings [][][]float32 `json:"token_embeddings"`
}

// Run posts the batch to the inference server.
func (s *HTTPSession) Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) ([][][]float32, error) {
	body, err := json.Marshal(inferenceRequest{
		InputIDs:      inputIDs,
		AttentionMask: attentionMask,
		TokenTypeIDs:  tokenTypeIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference call: status %d: %s", resp.StatusCode, payload)
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("inference response: %w", err)
	}
	if len(decoded.TokenEmbeddings) != len(inputIDs) {
		return nil, fmt.Errorf("inference response: got %d rows for %d inputs",
			len(decoded.TokenEmbeddings), len(inputIDs))
	}
	return decoded.TokenEmbeddings, nil
}

// Dimensions reports the embedding width of the served checkpoint.
func (s *HTTPSession) Dimensions() int {
	return s.dimensions
}

// Close is a no-op for the HTTP transport.
func (s *HTTPSession) Close() error {
	return nil
}
