package core

import "context"

// KeyPointsStyle is the summaries key holding the bullet list. No configured
// style may use it.
const KeyPointsStyle = "keyPoints"

// Style is a named summary variant. MaxLength and MinLength bound the output
// length; the unit is provider specific (tokens for seq2seq models, words for
// chat models). Instruction is appended to chat prompts when set.
type Style struct {
	Name        string
	MaxLength   int
	MinLength   int
	Instruction string
}

// Summarizer is one summarization backend.
type Summarizer interface {
	Summarize(ctx context.Context, text string, style Style) (string, error)
}

// SummaryGenerator turns cleaned document text into style name -> summary.
type SummaryGenerator interface {
	Summarize(ctx context.Context, text string) (map[string]string, error)
}

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
