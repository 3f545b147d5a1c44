package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/DocShare/internal/core"
)

// Supported upload types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// DefaultMinTextLength is the smallest cleaned text, in characters, worth summarizing.
const DefaultMinTextLength = 50

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv,
// with a pdfcpu reader as the PDF fallback.
type DocconvExtractor struct {
	minTextLength int
	convert       func(r io.Reader, mimeType string) (string, error)
	pdfFallback   func(data []byte) (string, error)
	log           *slog.Logger
}

func NewDocconvExtractor(minTextLength int) *DocconvExtractor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &DocconvExtractor{
		minTextLength: minTextLength,
		convert:       docconvConvert,
		pdfFallback:   extractPDFPages,
		log:           slog.Default().With("component", "extractor"),
	}
}

func docconvConvert(r io.Reader, mimeType string) (string, error) {
	res, err := docconv.Convert(r, mimeType, false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Extract dispatches on the media type, cleans the result and enforces the
// minimum length.
func (e *DocconvExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		raw string
		err error
	)
	switch mt := normalizeMediaType(contentType); mt {
	case MimePDF:
		raw, err = e.extractPDF(data)
	case MimeDOCX:
		raw, err = e.convert(bytes.NewReader(data), mt)
		if err != nil {
			err = fmt.Errorf("docx conversion: %w", err)
		}
	case MimeText:
		raw = strings.ToValidUTF8(string(data), string(utf8.RuneError))
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, contentType)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if utf8.RuneCountInString(text) < e.minTextLength {
		return "", core.ErrInsufficientContent
	}
	return text, nil
}

func (e *DocconvExtractor) extractPDF(data []byte) (string, error) {
	text, err := e.convert(bytes.NewReader(data), MimePDF)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		e.log.Warn("docconv pdf conversion failed, trying pdfcpu", "error", err)
	}

	text, ferr := e.pdfFallback(data)
	if ferr != nil {
		if err != nil {
			return "", fmt.Errorf("pdf conversion: %w", err)
		}
		return "", fmt.Errorf("pdf conversion: %w", ferr)
	}
	return text, nil
}

// normalizeMediaType lowercases the type and drops parameters such as charset.
func normalizeMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// DetectMimeType keeps an explicit declared type and falls back to the file
// extension when the client sent nothing useful.
func DetectMimeType(declared, filename string) string {
	if d := normalizeMediaType(declared); d != "" && d != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeText
	}
	if declared == "" {
		return "application/octet-stream"
	}
	return declared
}

// IsSupported reports whether Extract can handle the media type.
func IsSupported(contentType string) bool {
	switch normalizeMediaType(contentType) {
	case MimePDF, MimeDOCX, MimeText:
		return true
	}
	return false
}

// CleanText collapses every whitespace run to a single space and trims the ends.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount is the number of whitespace separated tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
