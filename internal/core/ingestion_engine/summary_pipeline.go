package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/DocShare/internal/core"
)

var _ core.SummaryGenerator = (*SummaryPipeline)(nil)

// SummaryPipeline turns document text into one summary per style. Long texts
// are chunked, summarized chunk by chunk and joined before the style pass.
// It holds no per-request state and is safe for concurrent use.
type SummaryPipeline struct {
	client core.Summarizer
	cfg    SummaryConfig
	log    *slog.Logger
}

func NewSummaryPipeline(client core.Summarizer, cfg SummaryConfig) *SummaryPipeline {
	return &SummaryPipeline{
		client: client,
		cfg:    cfg.withDefaults(),
		log:    slog.Default().With("component", "summary_pipeline"),
	}
}

// Styles returns the configured variants in request order.
func (p *SummaryPipeline) Styles() []core.Style {
	return p.cfg.Styles
}

// Summarize condenses the text and then requests every style concurrently.
// A single failing request fails the call; no partial map is returned.
func (p *SummaryPipeline) Summarize(ctx context.Context, text string) (map[string]string, error) {
	condensed, err := p.Condense(ctx, text)
	if err != nil {
		return nil, err
	}

	results := make([]string, len(p.cfg.Styles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, style := range p.cfg.Styles {
		g.Go(func() error {
			out, err := p.summarizeOne(gctx, condensed, style)
			if err != nil {
				return fmt.Errorf("style %s: %w", style.Name, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make(map[string]string, len(results)+1)
	for i, style := range p.cfg.Styles {
		summaries[style.Name] = results[i]
	}
	if src, ok := summaries[p.cfg.KeyPointsFrom]; ok && p.cfg.KeyPointsFrom != "" {
		summaries[KeyPointsKey] = keyPoints(src)
	}
	return summaries, nil
}

// Condense shrinks text until it fits CondenseThreshold. Each pass chunks the
// current text and joins the per-chunk summaries in order. It stops after
// MaxDepth passes or when a pass no longer shrinks the text; whatever is left
// is passed on as is and the provider client truncates it.
func (p *SummaryPipeline) Condense(ctx context.Context, text string) (string, error) {
	size := utf8.RuneCountInString(text)
	for depth := 1; depth <= p.cfg.MaxDepth && size > p.cfg.CondenseThreshold; depth++ {
		chunks := ChunkText(text, p.cfg.ChunkSize)
		p.log.Debug("condensing", "depth", depth, "chars", size, "chunks", len(chunks))

		combined, err := p.summarizeChunks(ctx, chunks)
		if err != nil {
			return "", err
		}

		next := utf8.RuneCountInString(combined)
		text = combined
		if next >= size {
			p.log.Debug("condensing pass did not shrink the text", "depth", depth, "chars", next)
			break
		}
		size = next
	}
	return text, nil
}

func (p *SummaryPipeline) summarizeChunks(ctx context.Context, chunks []string) (string, error) {
	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := p.summarizeOne(gctx, chunk, p.cfg.ChunkStyle)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(results, " "), nil
}

func (p *SummaryPipeline) summarizeOne(ctx context.Context, text string, style core.Style) (string, error) {
	out, err := p.client.Summarize(ctx, text, style)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", core.ErrEmptyResult
	}
	return out, nil
}

// keyPoints renders a summary as one bullet per sentence.
func keyPoints(summary string) string {
	var lines []string
	for _, part := range strings.Split(summary, ". ") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, "• "+part)
		}
	}
	return strings.Join(lines, "\n")
}
