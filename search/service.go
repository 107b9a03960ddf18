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


package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/datamere/ecosearch/ai"
	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/index"
	"github.com/datamere/ecosearch/storage"
)

// defaultScoreThreshold is the minimum cosine similarity a hit needs to
// surface. Hits scoring exactly the threshold are kept.
const defaultScoreThreshold float32 = 0.60

// Hit is one retrieval result: the best-scoring snippet for a dataset plus
// the dataset's display fields.
type Hit struct {
	Dataset *core.Dataset
	Score   float32
	Snippet string
}

// FileRef points at one retrievable artefact of a dataset.
type FileRef struct {
	Name string
	Path string
}

// Source is one dataset reference attached to a conversational answer,
// carrying either the itemized file list or a single full-bundle entry.
type Source struct {
	Title          string
	FileIdentifier string
	Files          []FileRef
}

// Answer is the result of a conversational ask.
type Answer struct {
	Text    string
	Sources []Source
}

// Service retrieves datasets by semantic similarity and answers questions
// over the retrieved context.
type Service struct {
	vectorIndex index.VectorIndex
	datasets    storage.DatasetRepository
	embedder    ai.Embedder
	answerer    ai.Answerer
	threshold   float32
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithScoreThreshold overrides the minimum similarity cutoff.
func WithScoreThreshold(threshold float32) Option {
	return func(s *Service) error {
		s.threshold = threshold
		return nil
	}
}

// NewService creates a retrieval service.
func NewService(
	vectorIndex index.VectorIndex,
	datasets storage.DatasetRepository,
	provider ai.Provider,
	opts ...Option,
) (*Service, error) {
	if vectorIndex == nil {
		return nil, ErrIndexRequired
	}
	if datasets == nil {
		return nil, ErrDatasetsRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Service{
		vectorIndex: vectorIndex,
		datasets:    datasets,
		embedder:    provider.Embedder(),
		answerer:    provider.Answerer(),
		threshold:   defaultScoreThreshold,
		logger:      slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query and returns up to limit datasets ranked by their
// best snippet score. At most one hit per dataset survives, and nothing
// below the score threshold is returned.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit < 1 {
		limit = 1
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("query embedding failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	// Headroom: per-source dedup below can only shrink the candidate set.
	matches, err := s.vectorIndex.Search(ctx, index.Query{
		Vector: embedding,
		Limit:  2 * limit,
	})
	if err != nil {
		s.logger.Error("vector search failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	best := bestPerSource(matches)

	hits := make([]Hit, 0, len(best))
	for _, match := range best {
		if match.Score < s.threshold {
			continue
		}
		hits = append(hits, Hit{
			Dataset: s.resolveDataset(ctx, match),
			Score:   match.Score,
			Snippet: match.Text,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Ask answers a question conversationally. History, when present, is folded
// into the search query; AI-side failures of the optional steps degrade to
// the raw question and whole-dataset granularity rather than erroring.
func (s *Service) Ask(ctx context.Context, question string, history []ai.ChatTurn, limit int) (*Answer, error) {
	query := question
	if len(history) > 0 {
		rewritten, err := s.answerer.RewriteQuery(ctx, question, history)
		if err != nil {
			s.logger.Warn("query rewrite failed, using raw question", "err", err)
		} else if rewritten != "" {
			query = rewritten
		}
	}

	granularity, err := s.answerer.ClassifyGranularity(ctx, question)
	if err != nil {
		s.logger.Warn("granularity classification failed, defaulting to dataset", "err", err)
		granularity = ai.GranularityDataset
	}

	hits, err := s.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, hit.Snippet)
	}

	text, err := s.answerer.GenerateAnswer(ctx, question, snippets)
	if err != nil {
		s.logger.Error("answer generation failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	return &Answer{
		Text:    text,
		Sources: buildSources(hits, granularity),
	}, nil
}

// bestPerSource keeps the single best-scoring match for each source id.
// Candidates within a group are explicitly re-sorted by descending score
// rather than trusting index order.
func bestPerSource(matches []core.VectorSearchResult) []core.VectorSearchResult {
	groups := make(map[core.ID][]core.VectorSearchResult)
	order := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		if _, seen := groups[match.SourceId]; !seen {
			order = append(order, match.SourceId)
		}
		groups[match.SourceId] = append(groups[match.SourceId], match)
	}

	best := make([]core.VectorSearchResult, 0, len(order))
	for _, sourceId := range order {
		group := groups[sourceId]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		best = append(best, group[0])
	}
	return best
}

// resolveDataset fetches the parent dataset for display. When the record is
// gone the denormalized vector payload still renders a usable stub.
func (s *Service) resolveDataset(ctx context.Context, match core.VectorSearchResult) *core.Dataset {
	dataset, err := s.datasets.GetDataset(ctx, match.SourceId)
	if err == nil {
		return dataset
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("dataset lookup failed", "sourceId", match.SourceId, "err", err)
	}
	return &core.Dataset{
		Id:             match.SourceId,
		FileIdentifier: match.FileIdentifier,
		Title:          match.Metadata["title"],
		Abstract:       match.Metadata["abstract"],
		Authors:        match.Metadata["authors"],
		Keywords:       match.Metadata["keywords"],
	}
}

// buildSources attaches file references per hit. Document granularity
// itemizes every data file; dataset granularity points at the one full
// bundle. References are deduplicated by storage path.
func buildSources(hits []Hit, granularity ai.Granularity) []Source {
	seen := make(map[string]bool)
	sources := make([]Source, 0, len(hits))

	for _, hit := range hits {
		source := Source{
			Title:          hit.Dataset.Title,
			FileIdentifier: hit.Dataset.FileIdentifier,
		}

		if granularity == ai.GranularityDocument && len(hit.Dataset.Files) > 0 {
			for _, file := range hit.Dataset.Files {
				// The external share link beats the local path when the
				// document was mirrored to remote storage.
				path := file.StoragePath
				if file.DownloadURL != "" {
					path = file.DownloadURL
				}
				ref := FileRef{Name: file.FileName, Path: path}
				if skipDuplicate(seen, ref, hit.Dataset.FileIdentifier) {
					continue
				}
				source.Files = append(source.Files, ref)
			}
		} else {
			ref := FileRef{Name: "full dataset bundle", Path: hit.Dataset.ResourceURL}
			if !skipDuplicate(seen, ref, hit.Dataset.FileIdentifier) {
				source.Files = append(source.Files, ref)
			}
		}

		if len(source.Files) > 0 {
			sources = append(sources, source)
		}
	}
	return sources
}

// skipDuplicate records the reference key and reports whether it was seen
// before. Path is the identity; references without one fall back to the
// owning dataset plus name so path-less entries from different datasets
// never collapse into each other.
func skipDuplicate(seen map[string]bool, ref FileRef, fileIdentifier string) bool {
	key := ref.Path
	if key == "" {
		key = fileIdentifier + "/" + ref.Name
	}
	if seen[key] {
		return true
	}
	seen[key] = true
	return false
}
