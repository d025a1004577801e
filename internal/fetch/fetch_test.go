package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openheritage/arscale/internal/glb"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "model/gltf-binary")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	data, ct, err := NewHTTPFetcher(0, 0).Fetch(context.Background(), srv.URL+"/model.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, "model/gltf-binary", ct)
}

func TestHTTPFetcherDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	_, ct, err := NewHTTPFetcher(0, 0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, glb.ContentType, ct)
}

func TestHTTPFetcherRejectsOversizedPayload(t *testing.T) {
	payload := make([]byte, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	_, _, err := NewHTTPFetcher(0, 32).Fetch(context.Background(), srv.URL+"/model.glb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownload), "err = %v", err)

	data, _, err := NewHTTPFetcher(0, int64(len(payload))).Fetch(context.Background(), srv.URL+"/model.glb")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHTTPFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := NewHTTPFetcher(0, 0).Fetch(context.Background(), srv.URL+"/missing.glb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownload), "err = %v", err)
}

func TestHTTPFetcherTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections

	_, _, err := NewHTTPFetcher(0, 0).Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrDownload), "err = %v", err)
}

func TestHTTPFetcherHonorsContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := NewHTTPFetcher(time.Minute, 0).Fetch(ctx, srv.URL)
	assert.True(t, errors.Is(err, ErrDownload), "err = %v", err)
}

func TestOriginFetcherSchemeRouting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := &OriginFetcher{HTTP: NewHTTPFetcher(0, 0)}

	data, _, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)

	_, _, err = f.Fetch(context.Background(), "s3://bucket/key.glb")
	assert.True(t, errors.Is(err, ErrDownload), "s3 without client should fail, err = %v", err)

	_, _, err = f.Fetch(context.Background(), "ftp://host/file.glb")
	assert.True(t, errors.Is(err, ErrDownload), "err = %v", err)
}
