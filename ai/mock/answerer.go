package mock

import (
	"context"
	"strings"

	"github.com/datamere/ecosearch/ai"
)

// MockAnswerer is a test double for ai.Answerer.
type MockAnswerer struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	GenerateAnswerFunc func(ctx context.Context, question string, snippets []string) (string, error)

	// RewriteQueryFunc is called by RewriteQuery if set.
	RewriteQueryFunc func(ctx context.Context, question string, history []ai.ChatTurn) (string, error)

	// ClassifyGranularityFunc is called by ClassifyGranularity if set.
	ClassifyGranularityFunc func(ctx context.Context, question string) (ai.Granularity, error)

	callCount int
}

// NewMockAnswerer creates a mock answerer with deterministic defaults.
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// GenerateAnswer echoes the question and the snippet count by default.
func (m *MockAnswerer) GenerateAnswer(ctx context.Context, question string, snippets []string) (string, error) {
	m.callCount++
	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, question, snippets)
	}
	return "answer to: " + question + " (" + strings.Join(snippets, " | ") + ")", nil
}

// RewriteQuery returns the question unchanged by default.
func (m *MockAnswerer) RewriteQuery(ctx context.Context, question string, history []ai.ChatTurn) (string, error) {
	m.callCount++
	if m.RewriteQueryFunc != nil {
		return m.RewriteQueryFunc(ctx, question, history)
	}
	return question, nil
}

// ClassifyGranularity returns the dataset granularity by default.
func (m *MockAnswerer) ClassifyGranularity(ctx context.Context, question string) (ai.Granularity, error) {
	m.callCount++
	if m.ClassifyGranularityFunc != nil {
		return m.ClassifyGranularityFunc(ctx, question)
	}
	return ai.GranularityDataset, nil
}

// CallCount returns how many times any method was called.
func (m *MockAnswerer) CallCount() int {
	return m.callCount
}

// Reset clears overrides and the call count.
func (m *MockAnswerer) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
	m.RewriteQueryFunc = nil
	m.ClassifyGranularityFunc = nil
}
