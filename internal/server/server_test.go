package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rdharma/folio/internal/auth"
	"github.com/rdharma/folio/internal/blob"
	"github.com/rdharma/folio/internal/casestudy"
	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/post"
)

const testPassword = "hunter2"

type testServer struct {
	*Server
	posts  *post.Service
	auth   *auth.Auth
	cookie *http.Cookie
}

func caseStudyFiles() fstest.MapFS {
	return fstest.MapFS{
		"brute-forcing-move.mdx": {Data: []byte("---\ntitle: Brute forcing a move\nsummary: Search all the things\ndate: 2023-01-01\n---\n\n## Problem\n\nIt was **hard**.")},
	}
}

func newTestServer(t *testing.T, cfg *Config, blobs *blob.Store) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	db, err := post.OpenDB(ctx, "sqlite:"+filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	store, err := post.NewSQLStore(ctx, db, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	posts := post.NewService(store, logger)

	studies, err := casestudy.NewLibrary("content/case-studies", "*.mdx", casestudy.WithFS(caseStudyFiles()))
	require.NoError(t, err)

	a, err := auth.New(testPassword, "secret", time.Hour)
	require.NoError(t, err)
	token, err := a.NewSession()
	require.NoError(t, err)

	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Address = "localhost:0"
	if cfg.Site.Title == "" {
		cfg.Site = config.Default().Site
	}

	s, err := New(cfg, Deps{Posts: posts, CaseStudies: studies, Auth: a, Blobs: blobs}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	return &testServer{
		Server: s,
		posts:  posts,
		auth:   a,
		cookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func (ts *testServer) do(t *testing.T, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	if authenticated {
		req.AddCookie(ts.cookie)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(t *testing.T, target string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, httptest.NewRequest(http.MethodGet, target, nil), authenticated)
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (ts *testServer) postForm(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, formRequest(target, values), true)
}

func (ts *testServer) createPost(t *testing.T, title, content string, published bool) *post.Post {
	t.Helper()
	form := post.Form{Title: title, Author: "Ryan", Content: content}
	if published {
		form.Intent = post.IntentPublish
	}
	p, err := ts.posts.Create(context.Background(), form)
	require.NoError(t, err)
	return p
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- ts.Serve() }()

	resp, err := http.Get("http://" + ts.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	require.NoError(t, ts.Shutdown(context.Background()))
	require.NoError(t, <-errc)
}

func TestServer_Run(t *testing.T) {
	ts := newTestServer(t, &Config{ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ts.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ts.Addr() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}

func TestServer_UnixSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "folio.sock")
	logger := zaptest.NewLogger(t)
	a, err := auth.New(testPassword, "secret", time.Hour)
	require.NoError(t, err)

	s, err := New(&Config{Address: "unix://" + sock}, Deps{Auth: a}, logger)
	require.NoError(t, err)
	assert.Equal(t, sock, s.Addr())

	_, err = New(&Config{Address: "unix://" + sock}, Deps{Auth: a}, logger)
	require.Error(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_RequestID(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "4f1e4c4e-3d1b-4f7a-9c59-0b6f7a0e7f11")
	rec := ts.do(t, req, false)
	assert.Equal(t, "4f1e4c4e-3d1b-4f7a-9c59-0b6f7a0e7f11", rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not a uuid")
	rec = ts.do(t, req, false)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(requestIDHeader))
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.get(t, "/healthz", false)
	ts.get(t, "/nowhere", false)

	rec := ts.get(t, "/metrics", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `folio_http_requests_total{code="200",pattern="GET /healthz"} 1`)
	assert.Contains(t, body, `folio_http_requests_total{code="404",pattern="/"} 1`)
}
