package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/markdave123-py/DocShare/internal/core"
)

const DefaultHFModelURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// HuggingFaceSummarizer calls a seq2seq summarization model on the Hugging
// Face inference API. Style lengths are passed as token bounds.
type HuggingFaceSummarizer struct {
	apiKey     string
	modelURL   string
	maxInput   int
	httpClient *http.Client
	log        *slog.Logger
}

func NewHuggingFaceSummarizer(apiKey, modelURL string, maxInputChars int) *HuggingFaceSummarizer {
	if modelURL == "" {
		modelURL = DefaultHFModelURL
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &HuggingFaceSummarizer{
		apiKey:     apiKey,
		modelURL:   modelURL,
		maxInput:   maxInputChars,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        slog.Default().With("component", "hf-summarizer"),
	}
}

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

func (h *HuggingFaceSummarizer) Summarize(ctx context.Context, text string, style core.Style) (string, error) {
	if h.apiKey == "" {
		return "", fmt.Errorf("%w: HF_API_KEY is empty", core.ErrProviderMisconfigured)
	}

	body, err := json.Marshal(hfRequest{
		Inputs:     clip(text, h.maxInput),
		Parameters: hfParameters{MaxLength: style.MaxLength, MinLength: style.MinLength},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrProviderMisconfigured, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", core.ErrProviderUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.log.Warn("inference api error", "status", resp.StatusCode, "style", style.Name)
		return "", fmt.Errorf("%w: status %d: %s", core.ErrProviderUnavailable, resp.StatusCode, snippet(raw))
	}

	var out []hfSummary
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: unexpected response: %s", core.ErrEmptyResult, snippet(raw))
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		return "", core.ErrEmptyResult
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	return clip(s, 200)
}
