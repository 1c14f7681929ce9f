package imagepkg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-retryablehttp"
)

// maxDownloadBytes caps a single asset download.
const maxDownloadBytes = 32 << 20

// Fetcher downloads remote images. Transient failures are retried by the
// underlying retryablehttp client.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher with the given per-request timeout and retry count.
func NewFetcher(timeout time.Duration, retries int) *Fetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.HTTPClient.Timeout = timeout
	c.Logger = nil // suppress retryablehttp's default logging
	return &Fetcher{client: c}
}

// Load downloads url and returns the raw body.
func (f *Fetcher) Load(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// DownloadImage downloads an image from url and decodes it.
func (f *Fetcher) DownloadImage(ctx context.Context, url string) (image.Image, error) {
	body, err := f.Load(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(body)
}

// Decode decodes PNG, JPEG, GIF, BMP or TIFF bytes.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
