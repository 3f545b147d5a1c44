package coretest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/markdave123-py/DocShare/internal/core"
)

// EchoSummarizer returns "SUMMARY:" followed by its input.
type EchoSummarizer struct {
	calls atomic.Int64
}

func (e *EchoSummarizer) Summarize(_ context.Context, text string, _ core.Style) (string, error) {
	e.calls.Add(1)
	return "SUMMARY:" + text, nil
}

func (e *EchoSummarizer) Calls() int { return int(e.calls.Load()) }

// FuncSummarizer adapts a function to core.Summarizer.
type FuncSummarizer func(ctx context.Context, text string, style core.Style) (string, error)

func (f FuncSummarizer) Summarize(ctx context.Context, text string, style core.Style) (string, error) {
	return f(ctx, text, style)
}

// StubGenerator is a core.SummaryGenerator returning a fixed result.
type StubGenerator struct {
	Result map[string]string
	Err    error
}

func (s StubGenerator) Summarize(context.Context, string) (map[string]string, error) {
	return s.Result, s.Err
}

// MemoryObjects is an in-memory core.ObjectClient.
type MemoryObjects struct {
	mu      sync.Mutex
	Objects    map[string][]byte
	Fail       error
	DeleteFail error
}

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{Objects: map[string][]byte{}}
}

func (m *MemoryObjects) UploadFile(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return "", m.Fail
	}
	m.Objects[key] = append([]byte(nil), data...)
	return "https://objects.test/" + key, nil
}

func (m *MemoryObjects) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteFail != nil {
		return m.DeleteFail
	}
	delete(m.Objects, key)
	return nil
}

// Keys lists the stored object keys.
func (m *MemoryObjects) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	return keys
}

// KeywordEmbedder embeds a text as keyword presence flags, enough to make
// cosine search deterministic in tests.
type KeywordEmbedder struct {
	Keywords []string
	Err      error
}

func (k KeywordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if k.Err != nil {
		return nil, k.Err
	}
	if len(k.Keywords) == 0 {
		return nil, errors.New("no keywords configured")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		vec := make([]float32, len(k.Keywords))
		for j, kw := range k.Keywords {
			if strings.Contains(t, kw) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}
