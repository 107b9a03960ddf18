package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a single embedding for one text. Texts longer
	// than the model's sequence window are pooled across windows so the
	// result always has Dimensions() components.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts. The returned
	// slice matches the order of the inputs.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the width of the vectors this embedder emits.
	Dimensions() int
}

// Answerer turns retrieved catalogue snippets into conversational answers.
// Implementations must be thread-safe for concurrent use.
type Answerer interface {
	// GenerateAnswer synthesizes a grounded answer to the question from
	// the given context snippets.
	GenerateAnswer(ctx context.Context, question string, snippets []string) (string, error)

	// RewriteQuery folds conversation history into a standalone search
	// query for the current question.
	RewriteQuery(ctx context.Context, question string, history []ChatTurn) (string, error)

	// ClassifyGranularity decides whether a question targets whole
	// datasets or the documents inside them.
	ClassifyGranularity(ctx context.Context, question string) (Granularity, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Answerer returns the conversational answer service.
	Answerer() Answerer

	// Close releases resources held by the provider and its services.
	Close() error
}
