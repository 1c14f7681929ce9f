// Package api exposes the card game service over HTTP with gin.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/compositor"
	"github.com/youruser/therapydeck/internal/config"
	"github.com/youruser/therapydeck/internal/fonts"
	"github.com/youruser/therapydeck/internal/generation"
	"github.com/youruser/therapydeck/internal/storage"
)

// ResourceStore persists card games and their asset versions.
type ResourceStore interface {
	CreateResource(ctx context.Context, r *storage.Resource) error
	GetResource(ctx context.Context, id string) (*storage.Resource, error)
	ListAssets(ctx context.Context, resourceID string) ([]*storage.AssetVersion, error)
	AssetMap(ctx context.Context, resourceID string, urlFor func(string) string) (map[string]string, error)
}

// BlobReader serves stored blobs.
type BlobReader interface {
	Get(ctx context.Context, id string) ([]byte, error)
	URL(id string) string
}

// AssetGenerator runs image generations.
type AssetGenerator interface {
	GenerateFrame(ctx context.Context, req generation.FrameRequest) (*generation.FrameResult, error)
	GenerateDeckAssets(ctx context.Context, resourceID string, content *cards.Content, opts generation.BatchOptions) []generation.AssetResult
}

// Deps are the collaborators of a Server. Text and Assets may be nil, in
// which case their endpoints answer 503.
type Deps struct {
	Store    ResourceStore
	Blobs    BlobReader
	Assets   AssetGenerator
	Text     generation.TextGenerator
	Resolver *cards.Resolver
	Fonts    *fonts.Registry
	Loader   compositor.ImageLoader
	Server   config.ServerConfig
	Export   config.ExportConfig
	Logger   *slog.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	store    ResourceStore
	blobs    BlobReader
	assets   AssetGenerator
	text     generation.TextGenerator
	resolver *cards.Resolver
	fonts    *fonts.Registry
	loader   compositor.ImageLoader
	server   config.ServerConfig
	export   config.ExportConfig
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewServer builds a Server from d.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Resolver == nil {
		d.Resolver = cards.NewResolver()
	}
	rps, burst := d.Server.GenerateRPS, d.Server.GenerateBurst
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Server{
		store:    d.Store,
		blobs:    d.Blobs,
		assets:   d.Assets,
		text:     d.Text,
		resolver: d.Resolver,
		fonts:    d.Fonts,
		loader:   d.Loader,
		server:   d.Server,
		export:   d.Export,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		logger:   d.Logger,
	}
}

// Handler returns a gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if mb := s.server.MaxUploadMB; mb > 0 {
		r.MaxMultipartMemory = int64(mb) << 20
	}
	s.RegisterRoutes(r)
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		switch {
		case status >= 500:
			logger.Error("request", attrs...)
		case status >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}

// rateLimit rejects requests beyond the shared generation budget.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(429, gin.H{"error": "too many generation requests, slow down"})
			return
		}
		c.Next()
	}
}
