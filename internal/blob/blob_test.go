package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clock := func() time.Time { return time.UnixMilli(1700000000000) }
	opts = append([]Option{WithClock(clock), WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewStore(memfs.New(), "/uploads/", opts...)
}

func TestStore_Put(t *testing.T) {
	s := newTestStore(t)

	obj, err := s.Put(context.Background(), "My Photo (1).png", bytes.NewReader(pngData))
	require.NoError(t, err)
	assert.Equal(t, &Object{
		Key:         "blog/1700000000000-My-Photo-1-.png",
		URL:         "/uploads/blog/1700000000000-My-Photo-1-.png",
		ContentType: "image/png",
		Size:        int64(len(pngData)),
	}, obj)

	stored, err := util.ReadFile(s.fs, obj.Key)
	require.NoError(t, err)
	assert.Equal(t, pngData, stored)
}

func TestStore_PutRejects(t *testing.T) {
	t.Run("NotAnImage", func(t *testing.T) {
		_, err := newTestStore(t).Put(context.Background(), "notes.png", strings.NewReader("just text"))
		require.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := newTestStore(t, WithMaxSize(16)).Put(context.Background(), "a.png", bytes.NewReader(pngData))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestStore(t).Put(ctx, "a.png", bytes.NewReader(pngData))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_MaxSize(t *testing.T) {
	assert.EqualValues(t, DefaultMaxSize, newTestStore(t).MaxSize())
	assert.EqualValues(t, 16, newTestStore(t, WithMaxSize(16)).MaxSize())
}

func TestSanitizeName(t *testing.T) {
	testCases := map[string]string{
		"photo.jpg":           "photo.jpg",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\a b.gif`: "a-b.gif",
		"ünïcode.png":         "n-code.png",
		"...":                 "file",
		"":                    "file",
	}
	for input, expected := range testCases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, SanitizeName(input))
		})
	}
}

func TestStore_Handler(t *testing.T) {
	s := newTestStore(t)
	obj, err := s.Put(context.Background(), "a.png", bytes.NewReader(pngData))
	require.NoError(t, err)

	handler := http.StripPrefix("/uploads/", s.Handler())

	t.Run("Serves", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, obj.URL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, pngData, body)
	})

	for _, target := range []string{"/uploads/blog/missing.png", "/uploads/blog", "/uploads/"} {
		t.Run("NotFound "+target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, obj.URL, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestCleanKey(t *testing.T) {
	for _, key := range []string{"", "/", "../a", "blog/../../a", "blog//a"} {
		_, err := cleanKey(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}

	key, err := cleanKey("/blog/a.png")
	require.NoError(t, err)
	assert.Equal(t, "blog/a.png", key)
}
