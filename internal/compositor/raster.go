package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"

	"github.com/fogleman/gg"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/fonts"
	imagepkg "github.com/youruser/therapydeck/internal/image"
)

// ErrCardNotFound is returned when a preview is requested for an unknown card.
var ErrCardNotFound = errors.New("card not found")

// PreviewOptions control RenderCardPNG.
type PreviewOptions struct {
	// CardsPerPage picks the cell size the card is printed at.
	CardsPerPage int
	// Scale is pixels per point. Zero means 2.
	Scale float64
}

type rasterDrawFunc func(r *rasterizer, l Layer)

var rasterDrawers = map[LayerKind]rasterDrawFunc{
	LayerImageCover:   (*rasterizer).drawCover,
	LayerImageContain: (*rasterizer).drawContain,
	LayerText:         (*rasterizer).drawText,
	LayerWatermark:    (*rasterizer).drawText,
}

type rasterizer struct {
	dc     *gg.Context
	images Images
	fonts  *fonts.Registry
	logger *slog.Logger
	decode map[string]image.Image
}

// RenderCardPNG draws a single card with the same layers the PDF uses.
func RenderCardPNG(ctx context.Context, content *cards.Content, cardID string, assets map[string]string,
	opts PreviewOptions, loader ImageLoader, reg *fonts.Registry, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	card, ok := content.Card(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	grid, err := GridFor(opts.CardsPerPage)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 2
	}

	w, h := grid.CellSize()
	layers := CardLayers(card, content, assets, Rect{W: w, H: h})
	for i := range layers {
		layers[i] = scaleLayer(layers[i], scale)
	}
	doc := &Document{Width: w, Height: h, Grid: Grid{Cols: 1, Rows: 1}, Pages: []Page{{Side: SideFront, Layers: layers}}}
	images, err := Prefetch(ctx, doc, loader, logger)
	if err != nil {
		return nil, err
	}

	r := &rasterizer{
		dc:     gg.NewContext(int(math.Round(w*scale)), int(math.Round(h*scale))),
		images: images,
		fonts:  reg,
		logger: logger,
		decode: map[string]image.Image{},
	}
	r.dc.SetColor(color.White)
	r.dc.Clear()
	for _, l := range layers {
		if draw, ok := rasterDrawers[l.Kind]; ok {
			draw(r, l)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.dc.Image()); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func scaleLayer(l Layer, s float64) Layer {
	l.Box = Rect{X: l.Box.X * s, Y: l.Box.Y * s, W: l.Box.W * s, H: l.Box.H * s}
	l.FontSize *= s
	return l
}

func (r *rasterizer) image(l Layer) image.Image {
	name := imageName(l)
	if img, ok := r.decode[name]; ok {
		return img
	}
	data := r.images.bytesFor(l)
	if data == nil {
		return nil
	}
	img, err := imagepkg.Decode(data)
	if err != nil {
		r.logger.Warn("image unusable, layer omitted", "image", name, "error", err)
	}
	r.decode[name] = img
	return img
}

func (r *rasterizer) drawCover(l Layer) {
	img := r.image(l)
	if img == nil {
		return
	}
	w, h := int(math.Round(l.Box.W)), int(math.Round(l.Box.H))
	if w <= 0 || h <= 0 {
		return
	}
	r.dc.DrawImage(imagepkg.Cover(img, w, h), int(math.Round(l.Box.X)), int(math.Round(l.Box.Y)))
}

func (r *rasterizer) drawContain(l Layer) {
	img := r.image(l)
	if img == nil {
		return
	}
	w, h := int(math.Round(l.Box.W)), int(math.Round(l.Box.H))
	if w <= 0 || h <= 0 {
		return
	}
	fitted := imagepkg.Contain(img, w, h)
	b := fitted.Bounds()
	x := l.Box.X + (l.Box.W-float64(b.Dx()))/2
	y := l.Box.Y + (l.Box.H-float64(b.Dy()))/2
	r.dc.DrawImage(fitted, int(math.Round(x)), int(math.Round(y)))
}

func (r *rasterizer) drawText(l Layer) {
	if l.Text == "" || l.FontSize <= 0 {
		return
	}
	r.dc.SetFontFace(r.fonts.Face(l.Font, l.FontSize))
	c := imagepkg.ParseHexColorOr(l.Color, white)
	if l.Opacity > 0 && l.Opacity < 1 {
		c.A = uint8(math.Round(float64(c.A) * l.Opacity))
	}
	r.dc.SetColor(c)

	measure := func(s string) float64 {
		w, _ := r.dc.MeasureString(s)
		return w
	}
	lines := wrapText(l.Text, l.Box.W, measure)
	lineHeight := l.FontSize * lineSpacing
	top := blockTop(l.Box.Y, l.Anchor, len(lines), lineHeight)

	x, ax := l.Box.X+l.Box.W/2, 0.5
	switch l.Align {
	case cards.AlignLeft:
		x, ax = l.Box.X, 0
	case cards.AlignRight:
		x, ax = l.Box.X+l.Box.W, 1
	}
	for i, line := range lines {
		y := top + float64(i)*lineHeight + lineHeight/2
		r.dc.DrawStringAnchored(line, x, y, ax, 0.5)
	}
}
