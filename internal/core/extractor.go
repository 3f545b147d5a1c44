package core

import (
	"context"
)

// DocumentExtractor defines the interface for extracting text from uploaded files.
type DocumentExtractor interface {
	// Extract returns the cleaned plain text of data. The contentType selects the
	// parsing strategy; unknown types fail with ErrUnsupportedFileType and texts
	// below the minimum length fail with ErrInsufficientContent.
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}
