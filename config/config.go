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


// Package config loads the application configuration from YAML with
// sensible defaults for every omitted field.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CatalogueConfig contains connection details for the research-data
// catalogue.
type CatalogueConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// AIConfig configures the embedding and chat model endpoints. Mode selects
// the embedder: "openai" talks to an OpenAI-compatible embedding endpoint,
// "minilm" runs the local chunk-pool-normalize engine against a raw
// token-embedding inference service. Chat always uses the OpenAI-compatible
// protocol.
type AIConfig struct {
	Mode           string `yaml:"mode"`
	EmbeddingHost  string `yaml:"embedding_host"`
	ChatHost       string `yaml:"chat_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	Dimensions     int    `yaml:"dimensions"`

	// MiniLM settings, used when Mode is "minilm".
	MiniLMInferenceURL string `yaml:"minilm_inference_url"`
	MiniLMVocabPath    string `yaml:"minilm_vocab_path"`
}

// QdrantConfig contains connection details for the vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StorageConfig configures the embedded record store.
type StorageConfig struct {
	Path     string `yaml:"path"`
	FilesDir string `yaml:"files_dir"`
}

// IngestConfig tunes batch ingestion.
type IngestConfig struct {
	Workers    int `yaml:"workers"`
	EmbedRunes int `yaml:"embed_runes"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	ScoreThreshold float32 `yaml:"score_threshold"`
	Limit          int     `yaml:"limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DriveConfig configures the optional raw-document upload to Google Drive.
// Upload stays disabled while CredentialsFile is empty.
type DriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	FolderID        string `yaml:"folder_id"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalogue CatalogueConfig `yaml:"catalogue"`
	AI        AIConfig        `yaml:"ai"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Drive     DriveConfig     `yaml:"drive,omitempty"`
}

// QdrantAPIKey resolves the API key from the configured environment
// variable. Empty when unset.
func (c *AppConfig) QdrantAPIKey() string {
	if c.Qdrant.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Qdrant.APIKeyEnv)
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Catalogue.BaseURL == "" {
		cfg.Catalogue.BaseURL = "https://catalogue.ceh.ac.uk"
	}
	if cfg.Catalogue.RequestsPerSecond == 0 {
		cfg.Catalogue.RequestsPerSecond = 4
	}
	if cfg.AI.Mode == "" {
		cfg.AI.Mode = "openai"
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434"
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "all-MiniLM-L6-v2"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "qwen2.5:3b"
	}
	if cfg.AI.Dimensions == 0 {
		cfg.AI.Dimensions = 384
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.APIKeyEnv == "" {
		cfg.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "research_data"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/records"
	}
	if cfg.Storage.FilesDir == "" {
		cfg.Storage.FilesDir = "data/files"
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.EmbedRunes == 0 {
		cfg.Ingest.EmbedRunes = 1000
	}
	if cfg.Search.ScoreThreshold == 0 {
		cfg.Search.ScoreThreshold = 0.60
	}
	if cfg.Search.Limit == 0 {
		cfg.Search.Limit = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
