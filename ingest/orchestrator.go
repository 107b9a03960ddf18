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


// Package ingest pulls datasets from the catalogue into the record store
// and the vector index: metadata in four renderings, zipped data bundles,
// text extraction and embedding.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datamere/ecosearch/ai"
	"github.com/datamere/ecosearch/archive"
	"github.com/datamere/ecosearch/catalogue"
	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/index"
	"github.com/datamere/ecosearch/metadata"
	"github.com/datamere/ecosearch/storage"
	"github.com/datamere/ecosearch/upload"
)

// defaultEmbedRunes is the embedding-safe truncation applied to extracted
// text before it is embedded and stored as vector payload.
const defaultEmbedRunes = 1000

// Status is the terminal state of one identifier's ingestion.
type Status int

const (
	// StatusSkipped means the dataset already existed; nothing was
	// fetched or written.
	StatusSkipped Status = iota + 1

	// StatusSucceeded means the dataset was stored and its vectors
	// upserted.
	StatusSucceeded

	// StatusFailed means ingestion aborted for this identifier; other
	// identifiers in the batch are unaffected.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports the outcome of one identifier's ingestion.
type Result struct {
	FileIdentifier string
	Status         Status
	VectorCount    int
	FileCount      int
	Err            error
}

// Deps are the collaborators an Orchestrator drives. Uploader is optional;
// when nil, raw documents stay local only.
type Deps struct {
	Catalogue catalogue.Client
	Extractor *archive.Extractor
	Embedder  ai.Embedder
	Index     index.VectorIndex
	Datasets  storage.DatasetRepository
	Files     FileStore
	Uploader  upload.Uploader
}

// Orchestrator runs the per-identifier ingestion state machine.
type Orchestrator struct {
	deps       Deps
	embedRunes int
	log        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEmbedRunes overrides the embedding truncation length.
func WithEmbedRunes(runes int) Option {
	return func(o *Orchestrator) {
		o.embedRunes = runes
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log.With("component", "ingest")
	}
}

// NewOrchestrator wires an orchestrator over its collaborators.
func NewOrchestrator(deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:       deps,
		embedRunes: defaultEmbedRunes,
		log:        slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Bootstrap makes sure the vector collection exists. Failure is logged and
// tolerated: ingestion proceeds and search degrades until corrected.
func (o *Orchestrator) Bootstrap(ctx context.Context) {
	if err := o.deps.Index.EnsureCollection(ctx, o.deps.Embedder.Dimensions()); err != nil {
		o.log.Warn("vector collection bootstrap failed", "error", err)
	}
}

// IngestOne runs the full state machine for one identifier. Panics in any
// step are caught and reported as a failed result.
func (o *Orchestrator) IngestOne(ctx context.Context, fileIdentifier string) (result Result) {
	result = Result{FileIdentifier: fileIdentifier}
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("ingestion panicked", "id", fileIdentifier, "panic", r)
			result.Status = StatusFailed
			result.Err = fmt.Errorf("ingest %s: panic: %v", fileIdentifier, r)
		}
	}()

	exists, err := o.deps.Datasets.Exists(ctx, fileIdentifier)
	if err != nil {
		return o.fail(result, fmt.Errorf("duplicate check: %w", err))
	}
	if exists {
		o.log.Info("dataset already ingested", "id", fileIdentifier)
		result.Status = StatusSkipped
		return result
	}

	dataset, err := o.acquireMetadata(ctx, fileIdentifier)
	if err != nil {
		return o.fail(result, err)
	}

	entries := o.acquireContent(ctx, fileIdentifier)

	vectors := o.embedEntries(ctx, fileIdentifier, dataset, entries)
	if len(vectors) == 0 {
		// Metadata-only datasets stay findable through a summary vector.
		if summary := o.embedSummary(ctx, fileIdentifier, dataset); summary != nil {
			vectors = append(vectors, *summary)
		}
	}

	if err := o.deps.Index.Upsert(ctx, vectors); err != nil {
		return o.fail(result, fmt.Errorf("vector upsert: %w", err))
	}

	// Persist last: a failure before this point leaves no record, so a
	// retry re-runs the whole identifier and its deterministic vector ids
	// overwrite any orphans.
	if err := o.deps.Datasets.AddDataset(ctx, dataset); err != nil {
		return o.fail(result, fmt.Errorf("persist dataset: %w", err))
	}

	o.log.Info("dataset ingested",
		"id", fileIdentifier,
		"files", len(dataset.Files),
		"vectors", len(vectors))
	result.Status = StatusSucceeded
	result.VectorCount = len(vectors)
	result.FileCount = len(dataset.Files)
	return result
}

func (o *Orchestrator) fail(result Result, err error) Result {
	o.log.Error("ingestion failed", "id", result.FileIdentifier, "error", err)
	result.Status = StatusFailed
	result.Err = fmt.Errorf("ingest %s: %w", result.FileIdentifier, err)
	return result
}

// acquireMetadata fetches the four renderings in priority order. The
// primary rendering must fetch and parse; the others only enrich. Every
// successfully fetched rendering is kept as a raw MetadataRecord.
func (o *Orchestrator) acquireMetadata(ctx context.Context, fileIdentifier string) (*core.Dataset, error) {
	var dataset *core.Dataset

	for _, format := range core.MetadataFormats {
		primary := format == core.FormatISO19115XML

		raw, err := o.deps.Catalogue.FetchMetadata(ctx, fileIdentifier, format)
		if err != nil {
			if primary {
				return nil, fmt.Errorf("%w: fetch %s: %v", ErrPrimaryMetadata, format, err)
			}
			o.log.Warn("metadata rendering unavailable", "id", fileIdentifier, "format", format.String(), "error", err)
			continue
		}

		parser, err := metadata.ParserFor(format)
		if err != nil {
			return nil, err
		}
		parsed, err := parser.Parse(raw)
		if err != nil {
			if primary {
				return nil, fmt.Errorf("%w: parse %s: %v", ErrPrimaryMetadata, format, err)
			}
			o.log.Warn("metadata rendering unparseable", "id", fileIdentifier, "format", format.String(), "error", err)
			parsed = nil
		}

		if dataset == nil && parsed != nil {
			dataset, err = core.NewDataset(fileIdentifier, parsed.Title)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPrimaryMetadata, err)
			}
		}
		if dataset != nil {
			dataset.AddRawMetadata(format, string(raw))
			if parsed != nil {
				mergeParsed(dataset, parsed)
			}
		}
	}

	if dataset == nil {
		return nil, ErrPrimaryMetadata
	}
	return dataset, nil
}

// mergeParsed fills display fields the dataset does not have yet, so the
// primary rendering wins and the enrichment formats only close gaps.
func mergeParsed(dataset *core.Dataset, parsed *core.ParsedMetadata) {
	if dataset.Abstract == "" {
		dataset.Abstract = parsed.Abstract
	}
	if dataset.Authors == "" {
		dataset.Authors = parsed.AuthorsDisplay()
	}
	if dataset.Keywords == "" {
		dataset.Keywords = parsed.KeywordsDisplay()
	}
	if dataset.ResourceURL == "" {
		dataset.ResourceURL = parsed.ResourceURL
	}
	if dataset.PublishedDate.IsZero() {
		dataset.PublishedDate = parsed.PublishedDate
	}
}

// acquireContent walks the fallback chain: primary bundle, supporting
// bundle, then the datastore listing. The listing registers file names only
// and fetches no content. Total absence of content is tolerated.
func (o *Orchestrator) acquireContent(ctx context.Context, fileIdentifier string) []archive.Entry {
	if bundle, err := o.deps.Catalogue.FetchDataBundle(ctx, fileIdentifier); err == nil {
		return o.extract(ctx, fileIdentifier, bundle)
	} else {
		o.log.Debug("primary bundle unavailable", "id", fileIdentifier, "error", err)
	}

	if bundle, err := o.deps.Catalogue.FetchSupportingBundle(ctx, fileIdentifier); err == nil {
		return o.extract(ctx, fileIdentifier, bundle)
	} else {
		o.log.Debug("supporting bundle unavailable", "id", fileIdentifier, "error", err)
	}

	links, err := o.deps.Catalogue.ListDirectory(ctx, fileIdentifier)
	if err != nil {
		o.log.Warn("no content source available", "id", fileIdentifier, "error", err)
		return nil
	}
	entries := make([]archive.Entry, 0, len(links))
	for _, link := range links {
		entries = append(entries, archive.Entry{Name: link.Name})
	}
	return entries
}

func (o *Orchestrator) extract(ctx context.Context, fileIdentifier string, bundle []byte) []archive.Entry {
	entries, err := o.deps.Extractor.ExtractAll(ctx, bundle)
	if err != nil {
		o.log.Warn("bundle extraction failed", "id", fileIdentifier, "error", err)
		return nil
	}
	return entries
}

// embedEntries attaches every entry to the dataset and embeds the ones with
// usable text. An embedding failure skips that entry's vector only.
func (o *Orchestrator) embedEntries(ctx context.Context, fileIdentifier string, dataset *core.Dataset, entries []archive.Entry) []core.EmbeddingVector {
	var vectors []core.EmbeddingVector
	for _, entry := range entries {
		storagePath := ""
		if len(entry.Data) > 0 && o.deps.Files != nil {
			path, err := o.deps.Files.Save(fileIdentifier, entry.Name, entry.Data)
			if err != nil {
				o.log.Warn("could not persist data file", "id", fileIdentifier, "file", entry.Name, "error", err)
			} else {
				storagePath = path
			}
		}

		// Mirror the raw document to external storage when configured. A
		// failed upload keeps the local copy authoritative.
		downloadURL := ""
		if len(entry.Data) > 0 && o.deps.Uploader != nil {
			link, err := o.deps.Uploader.Upload(ctx, entry.Name, entry.Data)
			if err != nil {
				o.log.Warn("could not upload data file", "id", fileIdentifier, "file", entry.Name, "error", err)
			} else {
				downloadURL = link
			}
		}

		dataset.AddFile(core.DataFile{
			FileName:    entry.Name,
			StoragePath: storagePath,
			DownloadURL: downloadURL,
			Extracted:   entry.Text,
		})

		if !archive.RecognizedExtension(entry.Name) || strings.TrimSpace(entry.Text) == "" {
			continue
		}

		text := truncateRunes(entry.Text, o.embedRunes)
		vector, err := o.deps.Embedder.EmbedText(ctx, text)
		if err != nil {
			o.log.Warn("embedding failed", "id", fileIdentifier, "file", entry.Name, "error", err)
			continue
		}

		vectors = append(vectors, core.EmbeddingVector{
			Id:             core.VectorIDFor(fileIdentifier, entry.Name, 0),
			SourceId:       dataset.Id,
			FileIdentifier: fileIdentifier,
			SourceType:     core.SourceDocumentContent,
			TextContent:    text,
			Vector:         vector,
			Title:          dataset.Title,
			Abstract:       dataset.Abstract,
			Authors:        dataset.Authors,
			Keywords:       dataset.Keywords,
		})
	}
	return vectors
}

// embedSummary builds one metadata-summary vector from the display fields.
func (o *Orchestrator) embedSummary(ctx context.Context, fileIdentifier string, dataset *core.Dataset) *core.EmbeddingVector {
	var parts []string
	for _, part := range []string{dataset.Title, dataset.Abstract, dataset.Keywords, dataset.Authors} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil
	}

	text := truncateRunes(strings.Join(parts, "\n"), o.embedRunes)
	vector, err := o.deps.Embedder.EmbedText(ctx, text)
	if err != nil {
		o.log.Warn("summary embedding failed", "id", fileIdentifier, "error", err)
		return nil
	}

	return &core.EmbeddingVector{
		Id:             core.VectorIDFor(fileIdentifier, "", 0),
		SourceId:       dataset.Id,
		FileIdentifier: fileIdentifier,
		SourceType:     core.SourceMetadataSummary,
		TextContent:    text,
		Vector:         vector,
		Title:          dataset.Title,
		Abstract:       dataset.Abstract,
		Authors:        dataset.Authors,
		Keywords:       dataset.Keywords,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
