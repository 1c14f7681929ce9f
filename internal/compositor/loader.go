package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ImageLoader returns the bytes behind an asset URL.
type ImageLoader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// LoaderFunc adapts a function to ImageLoader.
type LoaderFunc func(ctx context.Context, url string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// SchemeLoader dispatches on the URL scheme (http, https, blob, file, ...).
type SchemeLoader map[string]ImageLoader

// Load implements ImageLoader.
func (s SchemeLoader) Load(ctx context.Context, raw string) ([]byte, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse asset url: %w", err)
	}
	l, ok := s[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("no loader for scheme %q", u.Scheme)
	}
	return l.Load(ctx, raw)
}

// FileLoader reads file: URLs, resolving relative paths against Root.
type FileLoader struct {
	Root string
}

// Load implements ImageLoader.
func (f FileLoader) Load(_ context.Context, raw string) ([]byte, error) {
	p := strings.TrimPrefix(strings.TrimPrefix(raw, "file://"), "file:")
	if !filepath.IsAbs(p) && f.Root != "" {
		p = filepath.Join(f.Root, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	return data, nil
}

// Images holds the loaded bytes per URL. A missing entry means the load failed.
type Images map[string][]byte

// Prefetch loads every image doc references. Failures are logged and the
// URL is left out, so the layers using it are skipped when drawing. Only a
// cancelled context aborts.
func Prefetch(ctx context.Context, doc *Document, loader ImageLoader, logger *slog.Logger) (Images, error) {
	if logger == nil {
		logger = slog.Default()
	}
	images := make(Images)
	for _, u := range doc.ImageURLs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if loader == nil {
			break
		}
		data, err := loader.Load(ctx, u)
		if err != nil {
			logger.Warn("asset unavailable, layer omitted", "url", u, "error", err)
			continue
		}
		images[u] = data
	}
	return images, nil
}

// bytesFor returns the image bytes of an image layer.
func (im Images) bytesFor(l Layer) []byte {
	if l.Data != nil {
		return l.Data
	}
	return im[l.URL]
}
