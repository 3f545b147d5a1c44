package services

import (
	"context"
	"log/slog"

	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/DocShare/internal/core/object-client"
	"github.com/markdave123-py/DocShare/internal/models"
)

// Upload is one file received from a client.
type Upload struct {
	UserID      string
	FileName    string
	ContentType string
	Data        []byte
}

// DocumentService runs the upload pipeline: detect type, optionally archive
// the original, extract text and summarize it.
type DocumentService struct {
	extractor core.DocumentExtractor
	summaries core.SummaryGenerator
	storage   core.ObjectClient
	log       *slog.Logger
}

// NewDocumentService wires the pipeline; storage may be nil.
func NewDocumentService(extractor core.DocumentExtractor, summaries core.SummaryGenerator, storage core.ObjectClient) *DocumentService {
	return &DocumentService{
		extractor: extractor,
		summaries: summaries,
		storage:   storage,
		log:       slog.Default().With("component", "document_service"),
	}
}

func (s *DocumentService) Process(ctx context.Context, in Upload) (*models.UploadResult, error) {
	if len(in.Data) == 0 && in.FileName == "" {
		return nil, core.ErrNoFileUploaded
	}
	fileType := ingestion_engine.DetectMimeType(in.ContentType, in.FileName)

	var fileURL, storedKey string
	if s.storage != nil && ingestion_engine.IsSupported(fileType) {
		key := objectclient.UploadKey(in.UserID, in.FileName)
		url, err := s.storage.UploadFile(ctx, key, in.Data, fileType)
		if err != nil {
			s.log.Warn("storing original failed, continuing without fileUrl", "key", key, "error", err)
		} else {
			fileURL, storedKey = url, key
		}
	}

	text, err := s.extractor.Extract(ctx, in.Data, fileType)
	if err != nil {
		s.discard(ctx, storedKey)
		return nil, err
	}

	summaries, err := s.summaries.Summarize(ctx, text)
	if err != nil {
		s.discard(ctx, storedKey)
		return nil, err
	}

	s.log.Info("document summarized", "file", in.FileName, "type", fileType, "chars", len(text))
	return &models.UploadResult{
		Text:      text,
		Summaries: summaries,
		WordCount: ingestion_engine.WordCount(text),
		FileName:  in.FileName,
		FileType:  fileType,
		FileURL:   fileURL,
	}, nil
}

// discard removes an archived original whose upload did not complete.
func (s *DocumentService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteFile(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error("removing stored original failed", "key", key, "error", err)
	}
}
