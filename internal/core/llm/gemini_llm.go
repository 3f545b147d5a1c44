package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/DocShare/internal/core"
)

var _ core.Summarizer = (*GeminiSummarizer)(nil)

// GeminiSummarizer prompts a Gemini chat model; style lengths are word bounds.
type GeminiSummarizer struct {
	client    *genai.Client
	modelName string
	maxInput  int
	log       *slog.Logger
}

// NewGeminiSummarizer returns a summarizer without a client when apiKey is
// empty; every call then fails with core.ErrProviderMisconfigured.
func NewGeminiSummarizer(ctx context.Context, apiKey, modelName string, maxInputChars int) (*GeminiSummarizer, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	g := &GeminiSummarizer{
		modelName: modelName,
		maxInput:  maxInputChars,
		log:       slog.Default().With("component", "gemini-summarizer"),
	}
	if apiKey == "" {
		return g, nil
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	g.client = cl
	return g, nil
}

func (g *GeminiSummarizer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, text string, style core.Style) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is empty", core.ErrProviderMisconfigured)
	}

	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(stylePrompt(style))},
	}
	m.SetTemperature(0)
	m.SetMaxOutputTokens(int32(maxOutputTokens(style)))

	resp, err := m.GenerateContent(ctx, genai.Text(clip(text, g.maxInput)))
	if err != nil {
		g.log.Warn("generate failed", "style", style.Name, "error", err)
		return "", fmt.Errorf("%w: gemini generate: %w", core.ErrProviderUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", core.ErrEmptyResult
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", core.ErrEmptyResult
	}
	return out, nil
}
