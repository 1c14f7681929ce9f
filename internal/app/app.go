// Package app assembles the service's collaborators from a config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/youruser/therapydeck/internal/compositor"
	"github.com/youruser/therapydeck/internal/config"
	"github.com/youruser/therapydeck/internal/fonts"
	"github.com/youruser/therapydeck/internal/generation"
	imagepkg "github.com/youruser/therapydeck/internal/image"
	"github.com/youruser/therapydeck/internal/storage"
)

// App holds the long-lived collaborators of the service.
type App struct {
	Config *config.Config
	DB     *storage.DB
	Blobs  *storage.FileBlobStore
	Fonts  *fonts.Registry
	Loader compositor.SchemeLoader
	Gemini *generation.GeminiClient
	Orch   *generation.Orchestrator
	Logger *slog.Logger
}

// New opens storage, loads fonts and builds the generation pipeline. The
// Gemini client and orchestrator stay nil without an API key. Fonts are
// watched until ctx is cancelled when cfg.Fonts.Watch is set.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	db, err := storage.Open(storage.DefaultConfig(cfg.Storage.Database))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.DB = db

	a.Blobs, err = storage.NewFileBlobStore(cfg.Storage.BlobDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.Fonts, err = LoadFonts(ctx, cfg.Fonts, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.Loader = NewLoader(cfg.Export, a.Blobs)

	if cfg.Generation.APIKey == "" {
		logger.Warn("no generation api key configured, generation endpoints are disabled")
		return a, nil
	}
	a.Gemini = generation.NewGeminiClient(&generation.GeminiConfig{
		BaseURL:        cfg.Generation.BaseURL,
		APIKey:         cfg.Generation.APIKey,
		ImageModel:     cfg.Generation.ImageModel,
		TextModel:      cfg.Generation.TextModel,
		RequestTimeout: cfg.Generation.Timeout,
	})
	a.Orch = generation.NewOrchestrator(a.Gemini, a.Blobs, db, generation.Config{
		IconSize:    cfg.Generation.IconSize,
		Tolerance:   cfg.Generation.Tolerance,
		Concurrency: cfg.Generation.Concurrency,
	}, logger)
	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// NewLoader returns the asset loader used for exports: http(s) URLs are
// downloaded with retries, blob: URLs read from blobs and file: URLs from
// disk relative to the export asset root. blobs may be nil.
func NewLoader(exp config.ExportConfig, blobs *storage.FileBlobStore) compositor.SchemeLoader {
	fetcher := imagepkg.NewFetcher(exp.DownloadTimeout, exp.DownloadRetries)
	l := compositor.SchemeLoader{
		"http":  fetcher,
		"https": fetcher,
		"file":  compositor.FileLoader{Root: exp.AssetRoot},
	}
	if blobs != nil {
		l[storage.BlobScheme] = blobs
	}
	return l
}

// LoadFonts registers the fonts under cfg.Dir and starts watching it when
// configured.
func LoadFonts(ctx context.Context, cfg config.FontsConfig, logger *slog.Logger) (*fonts.Registry, error) {
	reg := fonts.NewRegistry()
	if cfg.Dir == "" {
		return reg, nil
	}
	n, err := fonts.LoadDir(reg, cfg.Dir, cfg.Patterns, logger)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	logger.Info("fonts loaded", "dir", cfg.Dir, "count", n)
	if cfg.Watch {
		if err := fonts.Watch(ctx, reg, cfg.Dir, cfg.Patterns, logger); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
