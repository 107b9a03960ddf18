package mock

import (
	"github.com/datamere/ecosearch/ai"
)

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	MockEmbedder *MockEmbedder
	MockAnswerer *MockAnswerer

	closed bool
}

// NewMockProvider creates a provider backed by mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder: NewMockEmbedder(),
		MockAnswerer: NewMockAnswerer(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Answerer returns the mock answer service.
func (p *MockProvider) Answerer() ai.Answerer {
	return p.MockAnswerer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}
