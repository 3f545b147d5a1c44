package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/DocShare/internal/config"
	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/models"
)

const pgUniqueViolation = "23505"

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends verify-ca TLS parameters when a root certificate is given.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, name, email, password_hash, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash, user.AvatarURL, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return core.ErrEmailTaken
	}
	return err
}

const userColumns = `id, name, email, password_hash, avatar_url, role, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(c.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(c.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Documents

const documentColumns = `id, title, file_url, uploader_id, status, summary, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (models.Document, error) {
	var d models.Document
	err := r.Scan(&d.ID, &d.Title, &d.FileURL, &d.UploaderID, &d.Status, &d.Summary, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (c *DatabaseClient) queryDocuments(ctx context.Context, q string, args ...any) ([]models.Document, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents (id, title, file_url, uploader_id, status, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`
	return c.db.QueryRowContext(ctx, q,
		doc.ID, doc.Title, doc.FileURL, doc.UploaderID, doc.Status, doc.Summary,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	d, err := scanDocument(c.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocuments(ctx context.Context, status string) ([]models.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE $1::text = '' OR status = $1
		ORDER BY created_at ASC
	`
	return c.queryDocuments(ctx, q, status)
}

func (c *DatabaseClient) RecentDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1
	`
	return c.queryDocuments(ctx, q, limit)
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (c *DatabaseClient) CountDocumentsByStatus(ctx context.Context, uploaderID string) (map[string]int, error) {
	const q = `
		SELECT status, COUNT(*)
		FROM documents
		WHERE $1::text = '' OR uploader_id = $1
		GROUP BY status
	`
	rows, err := c.db.QueryContext(ctx, q, uploaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int, 3)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Embeddings

func (c *DatabaseClient) SetDocumentEmbedding(ctx context.Context, id string, embedding []float32) error {
	res, err := c.db.ExecContext(ctx, `UPDATE documents SET embedding = $2 WHERE id = $1`, id, pgvector.NewVector(embedding))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// SearchDocuments ranks indexed documents by cosine distance to queryVec.
func (c *DatabaseClient) SearchDocuments(ctx context.Context, queryVec []float32, limit int) ([]models.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	return c.queryDocuments(ctx, q, pgvector.NewVector(queryVec), limit)
}

// Comments

const commentColumns = `id, document_id, user_id, user_name, content, created_at`

func (c *DatabaseClient) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("nil comment")
	}
	const q = `
		INSERT INTO comments (id, document_id, user_id, user_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at
	`
	return c.db.QueryRowContext(ctx, q,
		comment.ID, comment.DocumentID, comment.UserID, comment.UserName, comment.Content,
	).Scan(&comment.CreatedAt)
}

func (c *DatabaseClient) queryComments(ctx context.Context, q string, args ...any) ([]models.Comment, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.DocumentID, &cm.UserID, &cm.UserName, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) ListCommentsByDocuments(ctx context.Context, documentIDs []string) (map[string][]models.Comment, error) {
	out := make(map[string][]models.Comment)
	if len(documentIDs) == 0 {
		return out, nil
	}
	const q = `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE document_id = ANY($1)
		ORDER BY created_at ASC
	`
	comments, err := c.queryComments(ctx, q, documentIDs)
	if err != nil {
		return nil, err
	}
	for _, cm := range comments {
		out[cm.DocumentID] = append(out[cm.DocumentID], cm)
	}
	return out, nil
}

func (c *DatabaseClient) RecentComments(ctx context.Context, limit int) ([]models.Comment, error) {
	const q = `
		SELECT ` + commentColumns + `
		FROM comments
		ORDER BY created_at DESC
		LIMIT $1
	`
	return c.queryComments(ctx, q, limit)
}
