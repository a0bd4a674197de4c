package handlers_test

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/config"
	"FieldScribe/internal/export"
	"FieldScribe/internal/handlers"
	"FieldScribe/internal/middleware"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"FieldScribe/internal/service"
	"FieldScribe/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Passw0rd!"

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Analyze(ctx context.Context, entries []analysis.EntryView) (*analysis.Summary, error) {
	args := m.Called(ctx, entries)
	s, _ := args.Get(0).(*analysis.Summary)
	return s, args.Error(1)
}

var _ service.Analyzer = (*mockAnalyzer)(nil)

type testServer struct {
	router   http.Handler
	cfg      *config.Config
	store    repo.Store
	blobs    *storage.MemoryStore
	users    *service.UserService
	analyzer *mockAnalyzer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{AuthSecret: "test-secret", MediaMaxMB: 1, PublicURL: "http://example.test", Location: time.UTC}
	logger := zap.NewNop().Sugar()
	store := repo.NewStore(db)
	blobs := storage.NewMemoryStore()
	renderer := export.NewPDFRenderer()
	analyzer := new(mockAnalyzer)

	userSvc := service.NewUserService(store, &service.BcryptHasher{Cost: bcrypt.MinCost}, blobs, logger)
	entrySvc := service.NewEntryService(store, blobs, renderer, service.EntryOptions{MaxUploadBytes: cfg.MediaMaxBytes()}, logger)
	analysisSvc := service.NewAnalysisService(store, analyzer, renderer, time.Second, logger)

	h := handlers.NewHandler(userSvc, entrySvc, analysisSvc, logger, cfg)
	return &testServer{router: h.Router, cfg: cfg, store: store, blobs: blobs, users: userSvc, analyzer: analyzer}
}

func (s *testServer) user(t *testing.T, name string, admin bool) *model.User {
	t.Helper()
	ctx := context.Background()
	u, err := s.users.Register(ctx, name, name+"@example.com", goodPassword)
	require.NoError(t, err)
	if admin {
		require.NoError(t, s.store.Users().SetAdmin(ctx, u.ID, true))
		u.IsAdmin = true
	}
	return u
}

// do выполняет запрос; userID == 0 — анонимно.
func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != 0 {
		addAuth(t, req, userID, s.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) doJSON(t *testing.T, method, target, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return s.do(t, method, target, r, "application/json", userID)
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// multipartBody собирает форму с полями и необязательным файлом.
func multipartBody(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

type entryJSON struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Tags  []struct {
		Name string `json:"name"`
	} `json:"tags"`
	Media []struct {
		ID        int64  `json:"id"`
		MediaType string `json:"media_type"`
	} `json:"media"`
	Shared   bool   `json:"shared"`
	ShareURL string `json:"share_url"`
}

func (e entryJSON) tagNames() []string {
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Name)
	}
	return out
}

type errorJSON struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v), rr.Body.String())
	return v
}
