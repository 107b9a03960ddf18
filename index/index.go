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


// Package index defines the vector index contract the pipeline writes to
// and retrieval reads from. The qdrant subpackage provides the production
// implementation.
package index

import (
	"context"
	"errors"

	"github.com/datamere/ecosearch/core"
)

// ErrCollectionUnavailable is returned when the index cannot be reached or
// the collection cannot be created.
var ErrCollectionUnavailable = errors.New("vector collection unavailable")

// Query describes one similarity search.
type Query struct {
	// Vector is the embedded query.
	Vector []float32

	// Limit caps the number of hits returned.
	Limit int

	// SourceType narrows hits to one vector source when non-zero.
	SourceType core.VectorSourceType
}

// VectorIndex stores embedding vectors and serves similarity queries.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// EnsureCollection creates the backing collection for vectors of the
	// given width if it does not already exist. Calling it on an existing
	// collection succeeds without side effects.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Upsert writes vectors, replacing any with the same id. An empty
	// batch is a no-op and must not touch the index.
	Upsert(ctx context.Context, vectors []core.EmbeddingVector) error

	// Search returns the closest vectors by cosine similarity, best
	// score first.
	Search(ctx context.Context, query Query) ([]core.VectorSearchResult, error)
}
