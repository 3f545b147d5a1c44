package ingestion_engine

import "github.com/markdave123-py/DocShare/internal/core"

// SummaryConfig tunes the summary pipeline.
//
// ChunkSize:          maximum characters per chunk sent to the provider.
// CondenseThreshold:  texts longer than this are chunked and condensed first.
// MaxDepth:           cap on condensing passes over the combined chunk summaries.
// MaxConcurrency:     provider calls in flight per request.
// ChunkStyle:         bounds used for the per-chunk summaries.
// Styles:             the variants returned to the caller.
// KeyPointsFrom:      style rendered as a bullet list under "keyPoints"; empty disables it.
type SummaryConfig struct {
	ChunkSize         int
	CondenseThreshold int
	MaxDepth          int
	MaxConcurrency    int
	ChunkStyle        core.Style
	Styles            []core.Style
	KeyPointsFrom     string
}

const (
	DefaultMaxDepth       = 3
	DefaultMaxConcurrency = 4
	KeyPointsKey          = core.KeyPointsStyle
)

// DefaultStyles are the short/medium/long variants.
func DefaultStyles() []core.Style {
	return []core.Style{
		{Name: "short", MaxLength: 60, MinLength: 20, Instruction: "Give the gist in one or two sentences."},
		{Name: "medium", MaxLength: 120, MinLength: 50},
		{Name: "long", MaxLength: 250, MinLength: 100, Instruction: "Cover every main point of the document."},
	}
}

// DefaultChunkStyle bounds the intermediate per-chunk summaries.
func DefaultChunkStyle() core.Style {
	return core.Style{Name: "chunk", MaxLength: 120, MinLength: 40}
}

func (c SummaryConfig) withDefaults() SummaryConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.CondenseThreshold <= 0 {
		c.CondenseThreshold = c.ChunkSize
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.ChunkStyle.Name == "" {
		c.ChunkStyle = DefaultChunkStyle()
	}
	if len(c.Styles) == 0 {
		c.Styles = DefaultStyles()
		if c.KeyPointsFrom == "" {
			c.KeyPointsFrom = "medium"
		}
	}
	return c
}
