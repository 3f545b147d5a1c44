package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/markdave123-py/DocShare/internal/core"
)

var _ core.Summarizer = (*OpenAISummarizer)(nil)

// OpenAISummarizer talks to any OpenAI compatible chat endpoint through
// langchaingo. baseURL may point at a local server.
type OpenAISummarizer struct {
	client   *openai.LLM
	maxInput int
	logger   *slog.Logger
}

// NewOpenAISummarizer leaves the client nil when apiKey is empty; calls then
// fail with core.ErrProviderMisconfigured.
func NewOpenAISummarizer(apiKey, baseURL, model string, maxInputChars int) (*OpenAISummarizer, error) {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	s := &OpenAISummarizer{
		maxInput: maxInputChars,
		logger:   slog.Default().With("component", "openai-summarizer"),
	}
	if apiKey == "" {
		return s, nil
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	s.client = client
	return s, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, style core.Style) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is empty", core.ErrProviderMisconfigured)
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(stylePrompt(style))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(clip(text, s.maxInput))},
		},
	}

	response, err := s.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(maxOutputTokens(style)),
	)
	if err != nil {
		s.logger.Warn("failed to generate content", "style", style.Name, "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrProviderUnavailable, err)
	}
	if len(response.Choices) < 1 {
		return "", core.ErrEmptyResult
	}

	out := strings.TrimSpace(response.Choices[0].Content)
	if out == "" {
		return "", core.ErrEmptyResult
	}
	return out, nil
}

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder implements core.EmbeddingProvider with langchaingo embeddings.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithEmbeddingModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &OpenAIEmbedder{embedder: embedder}, nil
}

func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: openai embed: %w", core.ErrProviderUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d vectors for %d texts: %w", len(vecs), len(texts), core.ErrEmptyResult)
	}
	return vecs, nil
}
