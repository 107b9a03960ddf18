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


// Package minilm embeds text with a MiniLM-family sentence transformer.
// Long texts are split into word chunks, each chunk is mean-pooled over its
// unmasked token embeddings, and the chunk vectors are averaged into one
// document vector.
package minilm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/datamere/ecosearch/ai"
	"github.com/datamere/ecosearch/core"
)

const (
	// defaultChunkWords is the word count per chunk fed to the model.
	defaultChunkWords = 300

	// defaultMaxTokens is the transformer's sequence window.
	defaultMaxTokens = 512

	// normEpsilon guards against dividing by a vanishing norm; vectors
	// below it are returned unnormalized.
	normEpsilon = 1e-9
)

// Engine implements ai.Embedder on top of a tokenizer and a model session.
type Engine struct {
	session    Session
	tokenizer  *Tokenizer
	chunkWords int
	maxTokens  int
	log        *slog.Logger
}

var _ ai.Embedder = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithChunkWords overrides the words-per-chunk split.
func WithChunkWords(words int) EngineOption {
	return func(e *Engine) {
		e.chunkWords = words
	}
}

// WithMaxTokens overrides the sequence window.
func WithMaxTokens(tokens int) EngineOption {
	return func(e *Engine) {
		e.maxTokens = tokens
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log.With("component", "minilm")
	}
}

// NewEngine builds an embedding engine over a session and vocabulary.
func NewEngine(session Session, vocab map[string]int64, opts ...EngineOption) (*Engine, error) {
	tokenizer, err := NewTokenizer(vocab)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		session:    session,
		tokenizer:  tokenizer,
		chunkWords: defaultChunkWords,
		maxTokens:  defaultMaxTokens,
		log:        slog.Default().With("component", "minilm"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimensions reports the model's embedding width.
func (e *Engine) Dimensions() int {
	return e.session.Dimensions()
}

// Close releases the underlying session.
func (e *Engine) Close() error {
	return e.session.Close()
}

// EmbedText embeds one text. All chunks go through the model in a single
// batch, then their pooled vectors are averaged and L2-normalized.
func (e *Engine) EmbedText(ctx context.Context, text string) ([]float32, error) {
	chunks := splitWords(text, e.chunkWords)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("minilm: %w", core.ErrEmptyText)
	}

	ids := make([][]int64, len(chunks))
	masks := make([][]int64, len(chunks))
	segments := make([][]int64, len(chunks))
	for i, chunk := range chunks {
		ids[i], masks[i], segments[i] = e.tokenizer.Encode(chunk, e.maxTokens)
	}

	tokenEmbeddings, err := e.session.Run(ctx, ids, masks, segments)
	if err != nil {
		return nil, fmt.Errorf("minilm: %w", err)
	}

	dim := e.Dimensions()
	pooled := make([][]float32, len(tokenEmbeddings))
	for i, rows := range tokenEmbeddings {
		vector, err := meanPool(rows, masks[i], dim)
		if err != nil {
			return nil, fmt.Errorf("minilm: chunk %d: %w", i, err)
		}
		pooled[i] = vector
	}

	document := meanOf(pooled, dim)
	normalize(document)
	return document, nil
}

// EmbedTexts embeds each text independently, preserving order.
func (e *Engine) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// splitWords breaks text into chunks of at most chunkWords whitespace
// separated words. Blank text yields no chunks.
func splitWords(text string, chunkWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += chunkWords {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// meanPool averages token embeddings over positions the attention mask
// marks as real, ignoring padding.
func meanPool(rows [][]float32, mask []int64, dim int) ([]float32, error) {
	sum := make([]float64, dim)
	var count float64
	for pos, row := range rows {
		if pos >= len(mask) || mask[pos] == 0 {
			continue
		}
		if len(row) != dim {
			return nil, fmt.Errorf("%w: token has %d dims, want %d", core.ErrDimensionMismatch, len(row), dim)
		}
		for i, v := range row {
			sum[i] += float64(v)
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: attention mask is all zero", core.ErrEmptyText)
	}

	out := make([]float32, dim)
	for i := range out {
		out[i] = float32(sum[i] / count)
	}
	return out, nil
}

// meanOf averages a set of equal-width vectors componentwise.
func meanOf(vectors [][]float32, dim int) []float32 {
	out := make([]float32, dim)
	if len(vectors) == 0 {
		return out
	}
	for _, vector := range vectors {
		for i, v := range vector {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float32(len(vectors))
	}
	return out
}

// normalize scales the vector to unit length in place. Vectors with a norm
// below normEpsilon are left untouched.
func normalize(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm < normEpsilon {
		return
	}
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
}
