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


// Package ecosearch assembles the ingestion and retrieval pipeline for
// research-data catalogue metadata: fetch, normalize, embed, index and
// answer questions over it.
package ecosearch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/datamere/ecosearch/ai"
	"github.com/datamere/ecosearch/ai/minilm"
	"github.com/datamere/ecosearch/ai/openai"
	"github.com/datamere/ecosearch/archive"
	"github.com/datamere/ecosearch/catalogue"
	"github.com/datamere/ecosearch/config"
	"github.com/datamere/ecosearch/index"
	"github.com/datamere/ecosearch/index/qdrant"
	"github.com/datamere/ecosearch/ingest"
	"github.com/datamere/ecosearch/search"
	"github.com/datamere/ecosearch/server"
	"github.com/datamere/ecosearch/storage"
	"github.com/datamere/ecosearch/storage/badger"
	"github.com/datamere/ecosearch/upload"
	"github.com/datamere/ecosearch/upload/gdrive"
)

// App wires the full pipeline from one configuration.
type App struct {
	cfg         *config.AppConfig
	backend     *badger.Backend
	datasetRepo storage.DatasetRepository
	provider    ai.Provider
	catalogue   catalogue.Client
	vectorIndex index.VectorIndex
	uploader    upload.Uploader
	logger      *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	inMemory bool
}

// WithInMemoryStorage keeps the record store off disk. Intended for tests
// and experiments.
func WithInMemoryStorage() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// NewApp opens the record store and connects the external collaborators.
func NewApp(cfg *config.AppConfig, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.Storage.Path, options.inMemory)
	if err != nil {
		return nil, err
	}
	datasetRepo := badger.NewDatasetRepository(backend)

	provider, err := buildProvider(cfg)
	if err != nil {
		datasetRepo.Close()
		backend.Close()
		return nil, err
	}

	// Raw-document mirroring stays off until Drive credentials are
	// configured.
	var uploader upload.Uploader
	if cfg.Drive.CredentialsFile != "" {
		uploader, err = gdrive.NewUploader(context.Background(),
			cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
		if err != nil {
			provider.Close()
			datasetRepo.Close()
			backend.Close()
			return nil, fmt.Errorf("drive uploader: %w", err)
		}
	}

	return &App{
		cfg:         cfg,
		backend:     backend,
		datasetRepo: datasetRepo,
		provider:    provider,
		catalogue: catalogue.NewHTTPClient(cfg.Catalogue.BaseURL,
			catalogue.WithRequestsPerSecond(cfg.Catalogue.RequestsPerSecond)),
		vectorIndex: qdrant.NewClient(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.QdrantAPIKey(),
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}),
		uploader: uploader,
		logger:   slog.Default(),
	}, nil
}

// buildProvider assembles the AI services. The minilm mode swaps the
// embedder for the local engine while chat keeps the OpenAI-compatible
// answerer.
func buildProvider(cfg *config.AppConfig) (ai.Provider, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithChatHost(cfg.AI.ChatHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithChatModel(cfg.AI.ChatModel),
		ai.WithDimensions(cfg.AI.Dimensions),
	)
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return nil, err
	}
	if cfg.AI.Mode != "minilm" {
		return provider, nil
	}

	vocabFile, err := os.Open(cfg.AI.MiniLMVocabPath)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("minilm vocabulary: %w", err)
	}
	defer vocabFile.Close()
	vocab, err := minilm.LoadVocabulary(vocabFile)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("minilm vocabulary: %w", err)
	}

	engine, err := minilm.NewEngine(
		minilm.NewHTTPSession(cfg.AI.MiniLMInferenceURL, cfg.AI.Dimensions), vocab)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return &localEmbedderProvider{Provider: provider, engine: engine}, nil
}

// localEmbedderProvider overlays the local embedding engine on the
// OpenAI-compatible provider.
type localEmbedderProvider struct {
	ai.Provider
	engine *minilm.Engine
}

func (p *localEmbedderProvider) Embedder() ai.Embedder {
	return p.engine
}

func (p *localEmbedderProvider) Close() error {
	engineErr := p.engine.Close()
	if err := p.Provider.Close(); err != nil {
		return err
	}
	return engineErr
}

// Close releases the AI provider and the record store.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.datasetRepo.Close(); err != nil {
		a.logger.Error("error closing dataset repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Datasets exposes the record store.
func (a *App) Datasets() storage.DatasetRepository {
	return a.datasetRepo
}

// NewRunner builds the batch ingestion runner.
func (a *App) NewRunner() *ingest.Runner {
	orchestrator := ingest.NewOrchestrator(ingest.Deps{
		Catalogue: a.catalogue,
		Extractor: archive.NewExtractor(),
		Embedder:  a.provider.Embedder(),
		Index:     a.vectorIndex,
		Datasets:  a.datasetRepo,
		Files:     ingest.NewDiskFileStore(a.cfg.Storage.FilesDir),
		Uploader:  a.uploader,
	}, ingest.WithEmbedRunes(a.cfg.Ingest.EmbedRunes))
	return ingest.NewRunner(orchestrator, a.cfg.Ingest.Workers)
}

// NewRetrieval builds the retrieval service.
func (a *App) NewRetrieval(opts ...search.Option) (*search.Service, error) {
	opts = append([]search.Option{
		search.WithScoreThreshold(a.cfg.Search.ScoreThreshold),
	}, opts...)
	return search.NewService(a.vectorIndex, a.datasetRepo, a.provider, opts...)
}

// NewServer builds the HTTP API over the retrieval service and the runner.
func (a *App) NewServer() (*server.Server, error) {
	retrieval, err := a.NewRetrieval()
	if err != nil {
		return nil, err
	}
	return server.New(retrieval, a.datasetRepo, a.NewRunner()), nil
}
