package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoredName(t *testing.T) {
	a := NewStoredName("Photo.JPG")
	b := NewStoredName("Photo.JPG")
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "Photo")
	assert.Len(t, NewStoredName("noext"), 36)
}

func TestFSStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFSStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	name, err := s.Save(ctx, []byte("png-bytes"), "../../etc/passwd.png")
	require.NoError(t, err)
	assert.Equal(t, name, filepath.Base(name))

	rc, err := s.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, name))
	_, err = s.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, name))

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSStore_RejectsPaths(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "..", "../x", "a/b", `a\b`} {
		_, err := s.Open(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, s.Delete(context.Background(), name), ErrInvalidName, name)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, []byte("x"), "a.mp3")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Len(t, s.Names(), 10)

	name := s.Names()[0]
	rc, err := s.Open(ctx, name)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "x", string(data))

	require.NoError(t, s.Delete(ctx, name))
	_, err = s.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.Names(), 9)
}

// fakeS3 отвечает на GET и DELETE в path-style адресации.
func fakeS3(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string]string{"/media/known.png": "png-bytes"}
	deleted := map[string]bool{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok || deleted[r.URL.Path] {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = io.WriteString(w, body)
		case http.MethodDelete:
			deleted[r.URL.Path] = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestS3Store_OpenAndDelete(t *testing.T) {
	ctx := context.Background()
	srv := fakeS3(t)

	s, err := NewS3Store(ctx, S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "media",
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	})
	require.NoError(t, err)

	rc, err := s.Open(ctx, "known.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, "known.png"))
	_, err = s.Open(ctx, "known.png")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "../escape"), ErrInvalidName)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
