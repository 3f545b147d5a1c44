package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/markdave123-py/DocShare/internal/config"
	"github.com/markdave123-py/DocShare/internal/core"
)

// DefaultMaxInputChars bounds the text sent in one summarization request.
const DefaultMaxInputChars = 7000

// NewSummarizer builds the backend named by cfg.SummaryProvider. Missing
// credentials are not an error here; the backend reports
// core.ErrProviderMisconfigured on its first call.
func NewSummarizer(ctx context.Context, cfg *config.Config) (core.Summarizer, error) {
	switch cfg.SummaryProvider {
	case "", "huggingface", "hf":
		return NewHuggingFaceSummarizer(cfg.HFAPIKey, cfg.HFModelURL, cfg.MaxInputChars), nil
	case "gemini":
		return NewGeminiSummarizer(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.MaxInputChars)
	case "openai":
		return NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.MaxInputChars)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownProvider, cfg.SummaryProvider)
	}
}

// NewEmbedder picks Gemini when its key is set, then OpenAI. It returns a nil
// provider when neither is configured.
func NewEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch {
	case cfg.AIAPIKey != "":
		return NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	case cfg.OpenAIAPIKey != "":
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbedModel)
	}
	return nil, nil
}

type rateLimited struct {
	next    core.Summarizer
	limiter *rate.Limiter
}

// RateLimited shares one token bucket between every caller of s. A
// non-positive rps returns s unchanged.
func RateLimited(s core.Summarizer, rps float64, burst int) core.Summarizer {
	if rps <= 0 {
		return s
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{next: s, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimited) Summarize(ctx context.Context, text string, style core.Style) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Summarize(ctx, text, style)
}

// clip truncates s to at most max runes.
func clip(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// stylePrompt is the system prompt shared by the chat backends.
func stylePrompt(style core.Style) string {
	var b strings.Builder
	b.WriteString("You summarize documents. Reply with the summary only, in plain prose without headings or lists.")
	if style.MaxLength > 0 {
		fmt.Fprintf(&b, " Use between %d and %d words.", style.MinLength, style.MaxLength)
	}
	if style.Instruction != "" {
		b.WriteString(" ")
		b.WriteString(style.Instruction)
	}
	return b.String()
}

// maxOutputTokens leaves headroom over a word budget.
func maxOutputTokens(style core.Style) int {
	if style.MaxLength <= 0 {
		return 512
	}
	return style.MaxLength*2 + 32
}
