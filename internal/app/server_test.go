package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/config"
	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/core/coretest"
	"github.com/markdave123-py/DocShare/internal/core/ingestion_engine"
	"github.com/markdave123-py/DocShare/internal/models"
	"github.com/markdave123-py/DocShare/internal/services"
)

const routerSecret = "router-secret"

func newTestRouter(t *testing.T) (http.Handler, *coretest.MemoryDB) {
	t.Helper()
	web := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(web, "index.html"), []byte("<h1>DocShare</h1>"), 0o644))

	cfg := &config.Config{
		JWTSecret:      routerSecret,
		MaxUploadMB:    1,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"http://localhost:3000"},
		WebDir:         web,
	}
	memDB := coretest.NewMemoryDB()
	pipeline := ingestion_engine.NewSummaryPipeline(&coretest.EchoSummarizer{}, ingestion_engine.SummaryConfig{})
	svc := Services{
		Users:     services.NewUserService(memDB),
		Documents: services.NewDocumentService(ingestion_engine.NewDocconvExtractor(0), pipeline, nil),
		Forum:     services.NewForumService(memDB, nil, nil),
		Stats:     services.NewStatsService(memDB),
	}
	return NewRouter(cfg, svc), memDB
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := appMiddleware.IssueToken(routerSecret, &models.User{ID: id, Name: id, Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestRouterPublicAndStatic(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DocShare")

	for _, path := range []string{"/api/forum", "/api/dashboard", "/api/profile", "/api/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, path, "", nil).Code, path)
	}
}

func TestRouterSignupFlow(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var signup struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.True(t, signup.Success)

	rec = do(t, h, http.MethodGet, "/api/auth/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Ada", me.Name)
	assert.Equal(t, models.RoleUploader, me.Role)

	rec = do(t, h, http.MethodPost, "/api/documents/share", signup.Token, map[string]string{"title": "Paper", "summary": "S"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/profile", signup.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalUploaded":1,"accepted":0,"rejected":0,"pending":1}`, rec.Body.String())
}

func TestRouterReviewPermissions(t *testing.T) {
	h, memDB := newTestRouter(t)
	require.NoError(t, memDB.CreateDocument(context.Background(), &models.Document{ID: "d1", Title: "T", UploaderID: "u1", Status: models.StatusPending}))

	uploader := tokenFor(t, "u1", models.RoleUploader)
	reviewer := tokenFor(t, "u2", models.RoleReviewer)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/documents/review", uploader, map[string]string{"docId": "d1", "status": "maybe"}).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/documents/review", uploader, map[string]string{"docId": "d1", "status": "approved"}).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/documents/review-queue", uploader, nil).Code)

	rec := do(t, h, http.MethodGet, "/api/documents/review-queue", reviewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var queue struct {
		Feed []models.Document `json:"feed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queue))
	require.Len(t, queue.Feed, 1)
	assert.Equal(t, "d1", queue.Feed[0].ID)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/documents/review", reviewer, map[string]string{"docId": "d1", "status": "approved"}).Code)
	doc, err := memDB.GetDocumentByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, doc.Status)
}

func TestKeyPointsSource(t *testing.T) {
	assert.Equal(t, "medium", keyPointsSource(ingestion_engine.DefaultStyles()))
	assert.Equal(t, "brief", keyPointsSource([]core.Style{{Name: "brief"}, {Name: "full"}}))
	assert.Empty(t, keyPointsSource(nil))
}

func TestNewSummaryPipelineUsesStylesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`styles:
  - name: tldr
    max_length: 40
    min_length: 10
`), 0o644))

	p, closer, err := NewSummaryPipeline(context.Background(), &config.Config{SummaryProvider: "huggingface", StylesFile: path})
	require.NoError(t, err)
	assert.Nil(t, closer)
	require.Len(t, p.Styles(), 1)
	assert.Equal(t, "tldr", p.Styles()[0].Name)

	_, _, err = NewSummaryPipeline(context.Background(), &config.Config{SummaryProvider: "carrier-pigeon"})
	assert.ErrorIs(t, err, core.ErrUnknownProvider)
}
