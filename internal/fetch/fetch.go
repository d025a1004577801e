// Package fetch downloads source model bytes from their origin. HTTP(S)
// origins are the common case; deployments that mirror archive assets in
// object storage can address them as s3://bucket/key.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/openheritage/arscale/internal/glb"
)

// ErrDownload marks any origin failure: transport errors, non-2xx
// responses, missing objects. Callers may treat it as transient.
var ErrDownload = errors.New("model download failed")

const (
	// DefaultTimeout bounds a single origin fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPayloadSize caps how many bytes one origin response may
	// carry, so a hostile or misconfigured origin cannot exhaust memory.
	DefaultMaxPayloadSize = 100 * 1024 * 1024
)

// Fetcher retrieves the raw bytes and content type for a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (data []byte, contentType string, err error)
}

// HTTPFetcher downloads over HTTP(S) with a bounded client.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher returns a fetcher whose requests time out after the
// given duration (DefaultTimeout when non-positive) and whose response
// bodies are capped at maxBytes (DefaultMaxPayloadSize when
// non-positive).
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPayloadSize
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %s returned %s", ErrDownload, rawURL, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d byte limit", ErrDownload, rawURL, f.maxBytes)
	}

	// Read one byte past the cap so an oversized chunked response is
	// rejected rather than silently truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d byte limit", ErrDownload, rawURL, f.maxBytes)
	}

	return data, contentTypeOrDefault(resp.Header.Get("Content-Type")), nil
}

// S3Fetcher reads s3://bucket/key URLs from object storage.
type S3Fetcher struct {
	client   *minio.Client
	maxBytes int64
}

func NewS3Fetcher(client *minio.Client, maxBytes int64) *S3Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPayloadSize
	}
	return &S3Fetcher{client: client, maxBytes: maxBytes}
}

func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, "", fmt.Errorf("%w: invalid object url %q", ErrDownload, rawURL)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if info.Size > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d byte limit", ErrDownload, rawURL, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(obj, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	return data, contentTypeOrDefault(info.ContentType), nil
}

// OriginFetcher routes by URL scheme: http(s) to the HTTP fetcher, s3 to
// the S3 fetcher when one is configured.
type OriginFetcher struct {
	HTTP *HTTPFetcher
	S3   *S3Fetcher
}

func (f *OriginFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.HTTP.Fetch(ctx, rawURL)
	case "s3":
		if f.S3 == nil {
			return nil, "", fmt.Errorf("%w: s3 origin not configured", ErrDownload)
		}
		return f.S3.Fetch(ctx, rawURL)
	default:
		return nil, "", fmt.Errorf("%w: unsupported scheme %q", ErrDownload, u.Scheme)
	}
}

func contentTypeOrDefault(ct string) string {
	if ct == "" || ct == "application/octet-stream" {
		return glb.ContentType
	}
	return ct
}
