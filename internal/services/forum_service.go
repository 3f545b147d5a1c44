package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/models"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// IndexQueue receives documents that need a search embedding.
type IndexQueue interface {
	Enqueue(docID string)
}

// ForumService covers sharing, review, the feed, search and comments.
type ForumService struct {
	db       core.DbClient
	indexer  IndexQueue
	embedder core.EmbeddingProvider
	policy   *bluemonday.Policy
	log      *slog.Logger
}

// NewForumService builds the service; indexer and embedder may be nil.
func NewForumService(db core.DbClient, indexer IndexQueue, embedder core.EmbeddingProvider) *ForumService {
	return &ForumService{
		db:       db,
		indexer:  indexer,
		embedder: embedder,
		policy:   bluemonday.StrictPolicy(),
		log:      slog.Default().With("component", "forum"),
	}
}

// Share posts a document to the forum. New documents always start pending.
func (s *ForumService) Share(ctx context.Context, sess models.Session, title, fileURL, summary string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", core.ErrMissingFields)
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		Title:      title,
		FileURL:    strings.TrimSpace(fileURL),
		UploaderID: sess.UserID,
		Status:     models.StatusPending,
		Summary:    summary,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if s.indexer != nil {
		s.indexer.Enqueue(doc.ID)
	}
	s.log.Info("document shared", "doc_id", doc.ID, "uploader", sess.UserID)
	return doc, nil
}

// Review approves or rejects a document. Only reviewers and admins may call it.
func (s *ForumService) Review(ctx context.Context, sess models.Session, docID, status string) error {
	if status != models.StatusApproved && status != models.StatusRejected {
		return core.ErrInvalidStatus
	}
	if !sess.CanReview() {
		return core.ErrForbidden
	}
	if strings.TrimSpace(docID) == "" {
		return fmt.Errorf("%w: docId is required", core.ErrMissingFields)
	}
	if err := s.db.UpdateDocumentStatus(ctx, docID, status); err != nil {
		return err
	}
	s.log.Info("document reviewed", "doc_id", docID, "status", status, "reviewer", sess.UserID)
	return nil
}

// Feed lists documents oldest first with their comments attached. An empty
// status lists everything.
func (s *ForumService) Feed(ctx context.Context, status string) ([]models.Document, error) {
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return nil, core.ErrInvalidStatus
	}

	docs, err := s.db.ListDocuments(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return s.withComments(ctx, docs)
}

// Search ranks indexed documents by semantic similarity to q.
func (s *ForumService) Search(ctx context.Context, q string, limit int) ([]models.Document, error) {
	if s.embedder == nil {
		return nil, core.ErrSearchUnavailable
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q is required", core.ErrMissingFields)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	vecs, err := s.embedder.EmbedTexts(ctx, []string{q})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: %w", core.ErrEmptyResult)
	}

	docs, err := s.db.SearchDocuments(ctx, vecs[0], limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Comment adds a sanitized comment to a document.
func (s *ForumService) Comment(ctx context.Context, sess models.Session, docID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(s.policy.Sanitize(content))
	if content == "" {
		return nil, core.ErrEmptyComment
	}

	doc, err := s.db.GetDocumentByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", docID, core.ErrNotFound)
	}

	c := &models.Comment{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     sess.UserID,
		UserName:   sess.Name,
		Content:    content,
	}
	if err := s.db.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *ForumService) withComments(ctx context.Context, docs []models.Document) ([]models.Document, error) {
	out := make([]models.Document, len(docs))
	if len(docs) == 0 {
		return out, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	byDoc, err := s.db.ListCommentsByDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	for i, d := range docs {
		d.Comments = byDoc[d.ID]
		if d.Comments == nil {
			d.Comments = []models.Comment{}
		}
		out[i] = d
	}
	return out, nil
}
