package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/compositor"
	"github.com/youruser/therapydeck/internal/deck"
	"github.com/youruser/therapydeck/internal/generation"
	"github.com/youruser/therapydeck/internal/storage"
	"github.com/youruser/therapydeck/internal/util"
)

type cardGameResponse struct {
	ID      string                  `json:"id"`
	Title   string                  `json:"title"`
	Content cards.Content           `json:"content"`
	Assets  []*storage.AssetVersion `json:"assets,omitempty"`
	URLs    map[string]string       `json:"urls,omitempty"`
}

// saveContent persists content as a new card game resource.
func (s *Server) saveContent(c *gin.Context, content cards.Content) {
	if err := content.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	raw, err := json.Marshal(content)
	if err != nil {
		respondError(c, err)
		return
	}
	r := &storage.Resource{Kind: storage.KindCardGame, Title: content.DeckName, Content: raw}
	if err := s.store.CreateResource(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cardGameResponse{ID: r.ID, Title: r.Title, Content: content})
}

// loadContent reads the card game :id. It writes the error response and
// returns false on failure.
func (s *Server) loadContent(c *gin.Context) (*storage.Resource, *cards.Content, bool) {
	r, err := s.store.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if r.Kind != storage.KindCardGame {
		respondError(c, fmt.Errorf("card game %s: %w", r.ID, storage.ErrNotFound))
		return nil, nil, false
	}
	var content cards.Content
	if err := json.Unmarshal(r.Content, &content); err != nil {
		respondError(c, fmt.Errorf("stored content is corrupt: %w", err))
		return nil, nil, false
	}
	if err := content.Validate(); err != nil {
		respondError(c, fmt.Errorf("card game %s: %w", r.ID, err))
		return nil, nil, false
	}
	return r, &content, true
}

// createCardGame resolves a label-referencing draft and stores it.
func (s *Server) createCardGame(c *gin.Context) {
	raw, err := s.readUpload(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	draft, err := cards.ParseDraft(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	s.saveContent(c, s.resolver.PostProcess(draft))
}

func (s *Server) importCardGame(c *gin.Context) {
	raw, err := s.readUpload(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	draft, err := cards.LoadDraftCSV(bytes.NewReader(raw))
	if err != nil {
		badRequest(c, err)
		return
	}
	if name := c.Query("deckName"); name != "" {
		draft.DeckName = name
	}
	s.saveContent(c, s.resolver.PostProcess(draft))
}

type generateRequest struct {
	Description string `json:"description" binding:"required"`
	CardCount   int    `json:"cardCount"`
}

func (s *Server) generateCardGame(c *gin.Context) {
	if s.text == nil {
		unavailable(c, "text generation")
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	content, err := generation.GenerateContent(c.Request.Context(), s.text, s.resolver, req.Description, req.CardCount)
	if err != nil {
		respondError(c, err)
		return
	}
	s.saveContent(c, content)
}

func (s *Server) getCardGame(c *gin.Context) {
	r, content, ok := s.loadContent(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	versions, err := s.store.ListAssets(ctx, r.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	urls := make(map[string]string, len(versions))
	for _, v := range versions {
		urls[v.AssetKey] = "/api/blobs/" + v.StorageID
	}
	c.JSON(http.StatusOK, cardGameResponse{ID: r.ID, Title: r.Title, Content: *content, Assets: versions, URLs: urls})
}

func (s *Server) deckList(c *gin.Context) {
	_, content, ok := s.loadContent(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, deck.ExportDeckText(*content))
}

type assetsRequest struct {
	Style generation.Style `json:"style"`
	// Regenerate replaces assets that already exist.
	Regenerate bool `json:"regenerate"`
}

type assetResultJSON struct {
	Key       string          `json:"key"`
	StorageID string          `json:"storageId,omitempty"`
	Skipped   bool            `json:"skipped,omitempty"`
	Error     string          `json:"error,omitempty"`
	Kind      generation.Kind `json:"kind,omitempty"`
}

func (s *Server) generateAssets(c *gin.Context) {
	if s.assets == nil {
		unavailable(c, "image generation")
		return
	}
	var req assetsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	r, content, ok := s.loadContent(c)
	if !ok {
		return
	}

	skip := map[string]bool{}
	if !req.Regenerate {
		versions, err := s.store.ListAssets(c.Request.Context(), r.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		for _, v := range versions {
			skip[v.AssetKey] = true
		}
	}

	results := s.assets.GenerateDeckAssets(c.Request.Context(), r.ID, content, generation.BatchOptions{Style: req.Style, Skip: skip})
	out := make([]assetResultJSON, len(results))
	failed := 0
	for i, res := range results {
		out[i] = assetResultJSON{Key: res.Key, StorageID: res.StorageID, Skipped: res.Skipped}
		if ge := generation.Classify(res.Err); ge != nil {
			out[i].Error, out[i].Kind = ge.Message, ge.Kind
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "failed": failed})
}

type exportRequest struct {
	CardsPerPage     *int                `json:"cardsPerPage"`
	IncludeCardBacks *bool               `json:"includeCardBacks"`
	Watermark        *bool               `json:"watermark"`
	Share            bool                `json:"share"`
	Filter           cards.FilterOptions `json:"filter"`
}

func (s *Server) exportOptions(req exportRequest, resourceID string) compositor.Options {
	opts := compositor.Options{
		CardsPerPage:     s.export.CardsPerPage,
		IncludeCardBacks: s.export.IncludeCardBacks,
		Watermark:        s.export.Watermark,
		WatermarkText:    s.export.WatermarkText,
		Filter:           req.Filter,
	}
	if req.CardsPerPage != nil {
		opts.CardsPerPage = *req.CardsPerPage
	}
	if req.IncludeCardBacks != nil {
		opts.IncludeCardBacks = *req.IncludeCardBacks
	}
	if req.Watermark != nil {
		opts.Watermark = *req.Watermark
	}
	if req.Share && s.server.ShareBaseURL != "" {
		opts.ShareURL = strings.TrimRight(s.server.ShareBaseURL, "/") + "/" + resourceID
	}
	return opts
}

func (s *Server) exportCardGame(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	r, content, ok := s.loadContent(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	assets, err := s.store.AssetMap(ctx, r.ID, s.blobs.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := compositor.Compose(ctx, content, assets, s.exportOptions(req, r.ID), s.loader, s.fonts, s.logger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", util.ContentDisposition(util.AttachmentFilename(content.DeckName, "pdf")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) previewCard(c *gin.Context) {
	r, content, ok := s.loadContent(c)
	if !ok {
		return
	}
	opts := compositor.PreviewOptions{CardsPerPage: s.export.CardsPerPage}
	if v, err := strconv.Atoi(c.Query("cardsPerPage")); err == nil {
		opts.CardsPerPage = v
	}
	if v, err := strconv.ParseFloat(c.Query("scale"), 64); err == nil {
		if v <= 0 || v > 8 {
			badRequest(c, errors.New("scale must be in (0, 8]"))
			return
		}
		opts.Scale = v
	}

	ctx := c.Request.Context()
	assets, err := s.store.AssetMap(ctx, r.ID, s.blobs.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := compositor.RenderCardPNG(ctx, content, c.Param("cardId"), assets, opts, s.loader, s.fonts, s.logger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", out)
}
