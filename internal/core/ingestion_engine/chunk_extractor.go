package ingestion_engine

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the maximum chunk length, in characters, fed to a
// single summarization request.
const DefaultChunkSize = 900

// Chunks splits text into sentence aligned pieces of at most maxChunkSize
// characters. Sentences are packed greedily; a sentence that alone exceeds the
// limit is packed word by word, and a single oversized word becomes its own
// chunk. Joining the chunks with a space reproduces CleanText(text).
//
// The sequence is pure: ranging over it again yields the same chunks.
func Chunks(text string, maxChunkSize int) iter.Seq[string] {
	return func(yield func(string) bool) {
		words := strings.Fields(text)
		if len(words) == 0 {
			return
		}
		if maxChunkSize <= 0 {
			yield(strings.Join(words, " "))
			return
		}

		var (
			buf    strings.Builder
			bufLen int
		)
		// add appends one unit; it reports false when the consumer stopped.
		add := func(unit string, n int) bool {
			if bufLen > 0 && bufLen+1+n > maxChunkSize {
				if !yield(buf.String()) {
					return false
				}
				buf.Reset()
				bufLen = 0
			}
			if bufLen > 0 {
				buf.WriteByte(' ')
				bufLen++
			}
			buf.WriteString(unit)
			bufLen += n
			return true
		}

		for sentence := range sentences(words) {
			joined := strings.Join(sentence, " ")
			if n := utf8.RuneCountInString(joined); n <= maxChunkSize {
				if !add(joined, n) {
					return
				}
				continue
			}
			for _, w := range sentence {
				if !add(w, utf8.RuneCountInString(w)) {
					return
				}
			}
		}
		if bufLen > 0 {
			yield(buf.String())
		}
	}
}

// ChunkText collects Chunks into a slice.
func ChunkText(text string, maxChunkSize int) []string {
	return slices.Collect(Chunks(text, maxChunkSize))
}

// sentences groups words into sentences. A sentence ends at a word whose last
// letter, ignoring closing quotes and brackets, is '.', '!' or '?'.
func sentences(words []string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		start := 0
		for i, w := range words {
			if endsSentence(w) {
				if !yield(words[start : i+1]) {
					return
				}
				start = i + 1
			}
		}
		if start < len(words) {
			yield(words[start:])
		}
	}
}

func endsSentence(word string) bool {
	w := strings.TrimRight(word, `"')]}’”»`)
	if w == "" {
		return false
	}
	switch w[len(w)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
