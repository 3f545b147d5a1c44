package core

import (
	"context"

	"github.com/markdave123-py/DocShare/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
// Lookups return (nil, nil) when the row does not exist.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	// ListDocuments returns documents oldest first; an empty status means all.
	ListDocuments(ctx context.Context, status string) ([]models.Document, error)
	RecentDocuments(ctx context.Context, limit int) ([]models.Document, error)
	// UpdateDocumentStatus returns ErrNotFound when no row matched.
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	// CountDocumentsByStatus groups by status; an empty uploaderID counts everyone.
	CountDocumentsByStatus(ctx context.Context, uploaderID string) (map[string]int, error)

	SetDocumentEmbedding(ctx context.Context, id string, embedding []float32) error
	SearchDocuments(ctx context.Context, queryVec []float32, limit int) ([]models.Document, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByDocuments(ctx context.Context, documentIDs []string) (map[string][]models.Comment, error)
	RecentComments(ctx context.Context, limit int) ([]models.Comment, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
}
