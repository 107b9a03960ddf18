// Package ai defines the embedding and answer-synthesis contracts used by
// ingestion and retrieval, plus shared configuration for the providers that
// implement them. Concrete implementations live in the minilm, openai and
// mock subpackages.
package ai
