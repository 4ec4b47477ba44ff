package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appconfig "github.com/levpat/marketplace-blog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   string
	ctype  string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			body:   string(body),
			ctype:  r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func newTestStorage(t *testing.T, endpoint string) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), &appconfig.StorageConfig{
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "marketplace-blog",
	})
	require.NoError(t, err)
	return s
}

func TestNewS3StorageRequiresEndpointAndBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), &appconfig.StorageConfig{Bucket: "b"})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
	_, err = NewS3Storage(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestPublicURLMatchesMinioLayout(t *testing.T) {
	s := newTestStorage(t, "127.0.0.1:9000")
	assert.Equal(t, "http://127.0.0.1:9000/marketplace-blog/test.jpg", s.PublicURL("test.jpg"))

	key, ok := s.KeyFromURL("http://127.0.0.1:9000/marketplace-blog/posts/2026/01/abc.png")
	assert.True(t, ok)
	assert.Equal(t, "posts/2026/01/abc.png", key)

	_, ok = s.KeyFromURL("https://cdn.example.com/other/abc.png")
	assert.False(t, ok)
}

func TestPublicBaseURLOverride(t *testing.T) {
	s, err := NewS3Storage(context.Background(), &appconfig.StorageConfig{
		Endpoint:      "minio:9000",
		Bucket:        "blog",
		UseSSL:        true,
		PublicBaseURL: "https://cdn.example.com/",
		AccessKey:     "k",
		SecretKey:     "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog/a.png", s.PublicURL("a.png"))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
}

func TestUploadAndDelete(t *testing.T) {
	server, requests := newFakeS3(t)
	s := newTestStorage(t, server.URL)

	url, err := s.Upload(context.Background(), "posts/2026/10/x.png", []byte("payload"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/marketplace-blog/posts/2026/10/x.png", url)

	require.NoError(t, s.Delete(context.Background(), "posts/2026/10/x.png"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/marketplace-blog/posts/2026/10/x.png", got[0].path)
	assert.True(t, strings.Contains(got[0].body, "payload"))
	assert.Equal(t, "image/png", got[0].ctype)
	assert.Equal(t, http.MethodDelete, got[1].method)
}

func TestUploadRejectsEmptyKey(t *testing.T) {
	s := newTestStorage(t, "127.0.0.1:9000")
	_, err := s.Upload(context.Background(), " / ", []byte("x"), "")
	assert.Error(t, err)
}
