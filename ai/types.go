package ai

// ChatTurn is one exchange in a conversation history.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the turn's text.
	Content string
}

// Granularity classifies what level of the catalogue a question targets.
type Granularity int

const (
	// GranularityDataset means the question is about datasets as a whole,
	// answered best from metadata summaries.
	GranularityDataset Granularity = iota + 1

	// GranularityDocument means the question is about the contents of
	// supporting documents.
	GranularityDocument
)

func (g Granularity) String() string {
	switch g {
	case GranularityDataset:
		return "dataset"
	case GranularityDocument:
		return "document"
	default:
		return "unknown"
	}
}
