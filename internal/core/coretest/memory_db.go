// Package coretest holds in-memory fakes of the core interfaces for tests.
package coretest

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/models"
)

var _ core.DbClient = (*MemoryDB)(nil)

// MemoryDB is a goroutine safe core.DbClient backed by maps.
type MemoryDB struct {
	mu         sync.Mutex
	users      map[string]*models.User
	docs       map[string]*models.Document
	comments   []models.Comment
	embeddings map[string][]float32
	clock      time.Time
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:      map[string]*models.User{},
		docs:       map[string]*models.Document{},
		embeddings: map[string][]float32{},
		clock:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// now hands out strictly increasing timestamps so ordering is deterministic.
func (m *MemoryDB) now() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *MemoryDB) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return core.ErrEmailTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.now()
		user.UpdatedAt = user.CreatedAt
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryDB) CreateDocument(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = m.now()
		doc.UpdatedAt = doc.CreatedAt
	}
	cp := *doc
	cp.Comments = nil
	m.docs[doc.ID] = &cp
	return nil
}

func (m *MemoryDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryDB) sortedDocs() []models.Document {
	out := make([]models.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MemoryDB) ListDocuments(_ context.Context, status string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, d := range m.sortedDocs() {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryDB) RecentDocuments(_ context.Context, limit int) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.sortedDocs()
	slices.Reverse(docs)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *MemoryDB) UpdateDocumentStatus(_ context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return core.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = m.now()
	return nil
}

func (m *MemoryDB) CountDocumentsByStatus(_ context.Context, uploaderID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, d := range m.docs {
		if uploaderID == "" || d.UploaderID == uploaderID {
			out[d.Status]++
		}
	}
	return out, nil
}

func (m *MemoryDB) SetDocumentEmbedding(_ context.Context, id string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return core.ErrNotFound
	}
	m.embeddings[id] = slices.Clone(embedding)
	return nil
}

// Embedding returns the stored vector of a document, if any.
func (m *MemoryDB) Embedding(id string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.embeddings[id]
	return v, ok
}

// SearchDocuments ranks embedded documents by cosine distance.
func (m *MemoryDB) SearchDocuments(_ context.Context, queryVec []float32, limit int) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type scored struct {
		doc  models.Document
		dist float64
	}
	var hits []scored
	for id, vec := range m.embeddings {
		hits = append(hits, scored{doc: *m.docs[id], dist: cosineDistance(queryVec, vec)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	var out []models.Document
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].doc)
	}
	return out, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func (m *MemoryDB) CreateComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}
	m.comments = append(m.comments, *c)
	return nil
}

func (m *MemoryDB) ListCommentsByDocuments(_ context.Context, documentIDs []string) (map[string][]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]models.Comment{}
	for _, c := range m.comments {
		if slices.Contains(documentIDs, c.DocumentID) {
			out[c.DocumentID] = append(out[c.DocumentID], c)
		}
	}
	return out, nil
}

func (m *MemoryDB) RecentComments(_ context.Context, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.comments)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryDB) Close() error { return nil }
