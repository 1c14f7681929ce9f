package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/therapydeck/internal/generation"
	imagepkg "github.com/youruser/therapydeck/internal/image"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"fonts":      s.fonts.Names(),
		"generation": s.assets != nil,
	})
}

// qrHandler returns a PNG QR code for the "text" query parameter.
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		badRequest(c, errors.New("text is required"))
		return
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) getBlob(c *gin.Context) {
	data, err := s.blobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// readUpload returns the "file" form field, or the raw body for
// non-multipart requests.
func (s *Server) readUpload(c *gin.Context) ([]byte, error) {
	limit := int64(s.server.MaxUploadMB) << 20
	if limit <= 0 {
		limit = 16 << 20
	}
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > limit {
			return nil, fmt.Errorf("upload larger than %d bytes", limit)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("upload larger than %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}
	return data, nil
}

// chromaKey mattes an uploaded image. With width and height the image is
// first fitted onto a key-green canvas of that size.
func (s *Server) chromaKey(c *gin.Context) {
	data, err := s.readUpload(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	img, err := imagepkg.Decode(data)
	if err != nil {
		badRequest(c, err)
		return
	}
	tolerance, _ := strconv.Atoi(c.Query("tolerance"))
	w, _ := strconv.Atoi(c.Query("width"))
	h, _ := strconv.Atoi(c.Query("height"))
	if w > 0 && h > 0 {
		if w > 4096 || h > 4096 {
			badRequest(c, errors.New("width and height must be at most 4096"))
			return
		}
		img = imagepkg.FitToCanvas(img, w, h)
	}
	out, err := imagepkg.EncodePNG(imagepkg.ExtractChromaKey(img, tolerance))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", out)
}

func (s *Server) generateFrame(c *gin.Context) {
	if s.assets == nil {
		unavailable(c, "image generation")
		return
	}
	var req generation.FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.assets.GenerateFrame(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
