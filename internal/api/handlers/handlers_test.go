package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/core/coretest"
	"github.com/markdave123-py/DocShare/internal/core/ingestion_engine"
	"github.com/markdave123-py/DocShare/internal/models"
	"github.com/markdave123-py/DocShare/internal/services"
)

const testSecret = "handler-secret"

var (
	ada   = models.Session{UserID: "u1", Name: "Ada", Role: models.RoleUploader}
	grace = models.Session{UserID: "u2", Name: "Grace", Role: models.RoleReviewer}
)

func asSession(r *http.Request, sess models.Session) *http.Request {
	return r.WithContext(appMiddleware.WithSession(r.Context(), sess))
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{core.ErrNoFileUploaded, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, "x/y"), http.StatusBadRequest},
		{core.ErrInsufficientContent, http.StatusBadRequest},
		{fmt.Errorf("style short: %w", core.ErrProviderUnavailable), http.StatusServiceUnavailable},
		{core.ErrEmptyResult, http.StatusServiceUnavailable},
		{core.ErrProviderMisconfigured, http.StatusInternalServerError},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrForbidden, http.StatusForbidden},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, c := range cases {
		got, msg := statusFor(c.err)
		assert.Equal(t, c.want, got, c.err.Error())
		assert.NotEmpty(t, msg)
	}
}

func TestSignupAndLogin(t *testing.T) {
	h := NewAuthHandler(services.NewUserService(coretest.NewMemoryDB()), testSecret)

	rec := httptest.NewRecorder()
	h.Signup(rec, jsonRequest(http.MethodPost, "/api/auth/signup", signupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	sess, err := appMiddleware.ParseToken(testSecret, body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.Name)
	assert.Equal(t, models.RoleUploader, sess.Role)

	rec = httptest.NewRecorder()
	h.Signup(rec, jsonRequest(http.MethodPost, "/api/auth/signup", signupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already in use", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	h.Signup(rec, jsonRequest(http.MethodPost, "/api/auth/signup", signupRequest{Email: "x@example.com"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing fields", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login", loginRequest{Email: "ada@example.com", Password: "pw"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")

	rec = httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login", loginRequest{Email: "ada@example.com", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(nil, testSecret)

	rec := httptest.NewRecorder()
	h.Me(rec, asSession(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), ada))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decode(t, rec)["userId"])

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func multipartRequest(t *testing.T, field, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName)}
		if contentType != "" {
			h["Content-Type"] = []string{contentType}
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return asSession(r, ada)
}

func newUploadHandler(gen core.SummaryGenerator, maxBytes int64) *UploadHandler {
	docs := services.NewDocumentService(ingestion_engine.NewDocconvExtractor(0), gen, nil)
	return NewUploadHandler(docs, maxBytes)
}

func TestUpload(t *testing.T) {
	pipeline := ingestion_engine.NewSummaryPipeline(&coretest.EchoSummarizer{}, ingestion_engine.SummaryConfig{})
	h := newUploadHandler(pipeline, 1<<20)

	text := strings.Repeat("DocShare turns documents into summaries. ", 5)
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, "file", "doc.txt", "text/plain", []byte(text)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, strings.TrimSpace(text), res.Text)
	assert.Equal(t, 25, res.WordCount)
	assert.Equal(t, "doc.txt", res.FileName)
	assert.Equal(t, "text/plain", res.FileType)
	assert.Len(t, res.Summaries, 4)
	assert.Empty(t, res.FileURL)
}

func TestUploadLargeDocument(t *testing.T) {
	pipeline := ingestion_engine.NewSummaryPipeline(&coretest.EchoSummarizer{}, ingestion_engine.SummaryConfig{})
	h := newUploadHandler(pipeline, 1<<20)

	var sb strings.Builder
	for i := 0; sb.Len() < 12000; i++ {
		fmt.Fprintf(&sb, "Section %d covers  goroutines, channels and select.\n\nIt ends here. ", i)
	}
	text := sb.String()
	require.GreaterOrEqual(t, len(text), 10000)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, "file", "handbook.txt", "text/plain", []byte(text)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, len(strings.Fields(text)), res.WordCount)
	for _, style := range ingestion_engine.DefaultStyles() {
		assert.NotEmpty(t, res.Summaries[style.Name], style.Name)
	}
	assert.NotEmpty(t, res.Summaries[ingestion_engine.KeyPointsKey])
}

func TestUploadErrors(t *testing.T) {
	ok := coretest.StubGenerator{Result: map[string]string{"short": "s"}}
	long := []byte(strings.Repeat("plenty of words in this file ", 10))

	cases := []struct {
		name   string
		gen    core.SummaryGenerator
		req    func(t *testing.T) *http.Request
		status int
		msg    string
	}{
		{"missing file", ok, func(t *testing.T) *http.Request {
			return multipartRequest(t, "", "", "", nil)
		}, http.StatusBadRequest, "No file uploaded"},
		{"unsupported", ok, func(t *testing.T) *http.Request {
			return multipartRequest(t, "file", "tool.exe", "application/x-msdownload", []byte("MZ"))
		}, http.StatusBadRequest, "Unsupported file type"},
		{"too short", ok, func(t *testing.T) *http.Request {
			return multipartRequest(t, "file", "a.txt", "text/plain", []byte("tiny"))
		}, http.StatusBadRequest, "File appears to be empty or contains insufficient text for summarization"},
		{"not multipart", ok, func(t *testing.T) *http.Request {
			return asSession(jsonRequest(http.MethodPost, "/api/upload", map[string]string{}), ada)
		}, http.StatusBadRequest, "invalid multipart form"},
		{"provider down", coretest.StubGenerator{Err: fmt.Errorf("style short: %w", core.ErrProviderUnavailable)}, func(t *testing.T) *http.Request {
			return multipartRequest(t, "file", "a.txt", "text/plain", long)
		}, http.StatusServiceUnavailable, "Summarization service unavailable"},
		{"provider misconfigured", coretest.StubGenerator{Err: core.ErrProviderMisconfigured}, func(t *testing.T) *http.Request {
			return multipartRequest(t, "file", "a.txt", "text/plain", long)
		}, http.StatusInternalServerError, "Summarization service is not configured"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newUploadHandler(c.gen, 1<<20).Upload(rec, c.req(t))
			assert.Equal(t, c.status, rec.Code)
			assert.Equal(t, c.msg, decode(t, rec)["error"])
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	h := newUploadHandler(coretest.StubGenerator{}, 1024)
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, "file", "big.txt", "text/plain", bytes.Repeat([]byte("a "), 4096)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareReviewFeedComment(t *testing.T) {
	forum := services.NewForumService(coretest.NewMemoryDB(), nil, nil)
	docs := NewDocumentHandler(forum)
	fh := NewForumHandler(forum)

	rec := httptest.NewRecorder()
	docs.Share(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/share", shareRequest{Title: "Notes", Summary: "S"}), ada))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	doc := body["document"].(map[string]any)
	docID := doc["id"].(string)
	assert.Equal(t, models.StatusPending, doc["status"])

	rec = httptest.NewRecorder()
	docs.Share(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/share", shareRequest{}), ada))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	docs.Review(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/review", reviewRequest{DocID: docID, Status: "approved"}), ada))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	docs.Review(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/review", reviewRequest{DocID: docID, Status: "maybe"}), grace))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	docs.Review(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/review", reviewRequest{DocID: "nope", Status: "approved"}), grace))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	docs.Review(rec, asSession(jsonRequest(http.MethodPost, "/api/documents/review", reviewRequest{DocID: docID, Status: "approved"}), grace))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	fh.Comment(rec, asSession(jsonRequest(http.MethodPost, "/api/comments", commentRequest{DocumentID: docID, Content: "<p>great</p>"}), grace))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "great", decode(t, rec)["comment"].(map[string]any)["content"])

	rec = httptest.NewRecorder()
	fh.Comment(rec, asSession(jsonRequest(http.MethodPost, "/api/comments", commentRequest{DocumentID: docID, Content: "   "}), grace))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Empty comment", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	fh.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/forum?status=approved", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode(t, rec)["feed"].([]any)
	require.Len(t, feed, 1)
	entry := feed[0].(map[string]any)
	assert.Equal(t, "approved", entry["status"])
	assert.Len(t, entry["comments"], 1)

	rec = httptest.NewRecorder()
	fh.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/forum?status=pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["feed"])
}

func TestSearchHandler(t *testing.T) {
	db := coretest.NewMemoryDB()
	emb := coretest.KeywordEmbedder{Keywords: []string{"go", "rust"}}
	forum := services.NewForumService(db, nil, emb)
	doc, err := forum.Share(context.Background(), ada, "Rust ownership", "", "borrowing")
	require.NoError(t, err)
	require.NoError(t, db.SetDocumentEmbedding(context.Background(), doc.ID, []float32{0, 1}))
	h := NewForumHandler(forum)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/forum/search?q=rust&limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode(t, rec)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, doc.ID, results[0].(map[string]any)["id"])

	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/forum/search?q=rust&limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewForumHandler(services.NewForumService(db, nil, nil)).Search(rec, httptest.NewRequest(http.MethodGet, "/api/forum/search?q=rust", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// an embedding provider outage is a 503, not a 500
	down := coretest.KeywordEmbedder{Err: fmt.Errorf("%w: openai embed: 500 boom", core.ErrProviderUnavailable)}
	rec = httptest.NewRecorder()
	NewForumHandler(services.NewForumService(db, nil, down)).Search(rec, httptest.NewRequest(http.MethodGet, "/api/forum/search?q=rust", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardAndProfile(t *testing.T) {
	db := coretest.NewMemoryDB()
	forum := services.NewForumService(db, nil, nil)
	_, err := forum.Share(context.Background(), ada, "One", "", "")
	require.NoError(t, err)
	h := NewStatsHandler(services.NewStatsService(db))

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["totalDocs"])
	assert.Equal(t, float64(1), body["pending"])
	activity := body["recentActivity"].([]any)
	require.Len(t, activity, 1)
	row := activity[0].(map[string]any)
	assert.Equal(t, "uploaded", row["action"])
	assert.Equal(t, "One", row["doc"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, row["date"])

	rec = httptest.NewRecorder()
	h.Profile(rec, asSession(httptest.NewRequest(http.MethodGet, "/api/profile", nil), ada))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"totalUploaded": float64(1), "accepted": float64(0), "rejected": float64(0), "pending": float64(1)}, decode(t, rec))
}
