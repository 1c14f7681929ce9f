// Package compositor lays out a card game deck onto A4 print pages and
// renders the result as PDF, or a single card as PNG.
//
// Layout is pure: it turns content plus an asset-key -> URL map into a
// Document made of layered pages. Renderers load the referenced images
// through an ImageLoader and draw the layers in order.
package compositor

import (
	"errors"
	"fmt"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/deck"
	imagepkg "github.com/youruser/therapydeck/internal/image"
)

// Page geometry in PostScript points.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
	PageMargin = 36.0
	CardGap    = 12.0
)

// Card layer geometry, as fractions of the cell.
const (
	iconLift    = 0.05
	textPadding = 0.06

	primaryTop    = 0.12
	primaryCenter = 0.40
	primaryBottom = 0.12

	secondaryTop    = 0.28
	secondaryCenter = 0.60
	secondaryBottom = 0.05
)

// Watermark and share code placement.
const (
	DefaultWatermarkText = "Made with Therapy Deck Studio"
	watermarkOpacity     = 0.35
	watermarkFontSize    = 10.0
	shareQRSize          = 30.0
	shareQRPixels        = 256
)

// ErrCardsPerPage is returned for a grid size other than 4, 6 or 9.
var ErrCardsPerPage = errors.New("cards per page must be 4, 6 or 9")

// ErrEmptyDeck is returned when there are no cards to print.
var ErrEmptyDeck = errors.New("deck has no cards to print")

// Grid is a page grid of Cols x Rows cards.
type Grid struct {
	Cols int
	Rows int
}

var grids = map[int]Grid{
	4: {Cols: 2, Rows: 2},
	6: {Cols: 2, Rows: 3},
	9: {Cols: 3, Rows: 3},
}

// GridFor returns the grid for a cards-per-page value.
func GridFor(cardsPerPage int) (Grid, error) {
	g, ok := grids[cardsPerPage]
	if !ok {
		return Grid{}, fmt.Errorf("%w: got %d", ErrCardsPerPage, cardsPerPage)
	}
	return g, nil
}

// CellSize returns the card size for g on an A4 page.
func (g Grid) CellSize() (w, h float64) {
	usableW := PageWidth - 2*PageMargin
	usableH := PageHeight - 2*PageMargin
	w = (usableW - CardGap*float64(g.Cols-1)) / float64(g.Cols)
	h = (usableH - CardGap*float64(g.Rows-1)) / float64(g.Rows)
	return w, h
}

// Cell returns the rectangle of slot i (row-major).
func (g Grid) Cell(i int) Rect {
	w, h := g.CellSize()
	col, row := i%g.Cols, i/g.Cols
	return Rect{
		X: PageMargin + float64(col)*(w+CardGap),
		Y: PageMargin + float64(row)*(h+CardGap),
		W: w,
		H: h,
	}
}

// Size is Cols*Rows.
func (g Grid) Size() int { return g.Cols * g.Rows }

// Rect is an axis-aligned box in points.
type Rect struct {
	X, Y, W, H float64
}

// LayerKind tags what a layer draws. Renderers dispatch on it through a
// table of draw functions.
type LayerKind string

const (
	LayerImageCover   LayerKind = "image_cover"
	LayerImageContain LayerKind = "image_contain"
	LayerText         LayerKind = "text"
	LayerWatermark    LayerKind = "watermark"
)

// Anchor says which edge of a text block Box.Y pins.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// Layer is one visual element. Layers on a page are drawn in slice order.
type Layer struct {
	Kind LayerKind
	// Box is the image box. For text, X and W give the horizontal span and Y
	// the anchor line; H is unused.
	Box Rect

	// Image layers reference a URL or carry inline PNG data.
	AssetKey string
	URL      string
	Data     []byte

	Text     string
	Font     string
	FontSize float64
	Color    string
	Align    cards.HAlign
	Anchor   Anchor
	Opacity  float64
}

// PageSide distinguishes card fronts from duplex back pages.
type PageSide string

const (
	SideFront PageSide = "front"
	SideBack  PageSide = "back"
)

// Page is one printed page.
type Page struct {
	Side    PageSide
	CardIDs []string
	Layers  []Layer
}

// Document is a laid-out deck.
type Document struct {
	Width  float64
	Height float64
	Grid   Grid
	Pages  []Page
}

// Options control Layout.
type Options struct {
	CardsPerPage     int
	IncludeCardBacks bool
	Watermark        bool
	// WatermarkText replaces DefaultWatermarkText when set.
	WatermarkText string
	// ShareURL, when set, prints a QR code linking to it on every front page.
	ShareURL string
	// Filter restricts which card designs are printed.
	Filter cards.FilterOptions
}

// Layout expands the deck by count, chunks it into pages and builds every
// page's layers. Missing asset URLs silently drop the affected layer.
func Layout(content *cards.Content, assets map[string]string, opts Options) (*Document, error) {
	grid, err := GridFor(opts.CardsPerPage)
	if err != nil {
		return nil, err
	}
	d, err := deck.FromContent(*content, opts.Filter)
	if err != nil {
		return nil, err
	}
	if len(d.Cards) == 0 {
		return nil, ErrEmptyDeck
	}

	var qr []byte
	if opts.ShareURL != "" {
		qr, err = imagepkg.GenerateQRPNG(opts.ShareURL, shareQRPixels)
		if err != nil {
			return nil, fmt.Errorf("share qr: %w", err)
		}
	}

	backURL := ""
	if content.CardBack != nil {
		backURL = assets[content.CardBack.ImageAssetKey]
	}
	withBacks := opts.IncludeCardBacks && backURL != ""

	doc := &Document{Width: PageWidth, Height: PageHeight, Grid: grid}
	for _, chunk := range d.Pages(grid.Size()) {
		front := Page{Side: SideFront}
		for i, card := range chunk {
			front.CardIDs = append(front.CardIDs, card.ID)
			front.Layers = append(front.Layers, CardLayers(card, content, assets, grid.Cell(i))...)
		}
		if qr != nil {
			front.Layers = append(front.Layers, shareCodeLayer(qr))
		}
		doc.Pages = append(doc.Pages, front)

		if withBacks {
			doc.Pages = append(doc.Pages, backPage(grid, content.CardBack.ImageAssetKey, backURL))
		}
	}

	if opts.Watermark {
		text := opts.WatermarkText
		if text == "" {
			text = DefaultWatermarkText
		}
		for i := range doc.Pages {
			doc.Pages[i].Layers = append(doc.Pages[i].Layers, watermarkLayer(text))
		}
	}
	return doc, nil
}

// CardLayers builds the layers of one card inside cell: background, icon,
// primary text, secondary text.
func CardLayers(card cards.Card, content *cards.Content, assets map[string]string, cell Rect) []Layer {
	var layers []Layer

	if bg, ok := content.Background(card.BackgroundID); ok {
		if url := assets[bg.ImageAssetKey]; url != "" {
			layers = append(layers, Layer{Kind: LayerImageCover, Box: cell, AssetKey: bg.ImageAssetKey, URL: url})
		}
	}

	if icon, ok := content.Icon(card.IconID); ok {
		if url := assets[icon.ImageAssetKey]; url != "" {
			size := cell.W * content.IconScaleOrDefault()
			box := Rect{
				X: cell.X + (cell.W-size)/2,
				Y: cell.Y + (cell.H-size)/2 - iconLift*cell.H,
				W: size,
				H: size,
			}
			layers = append(layers, Layer{Kind: LayerImageContain, Box: box, AssetKey: icon.ImageAssetKey, URL: url})
		}
	}

	primary := cards.PrimaryText(card, content.TextSettings)
	if cards.ShouldShowText(primary.Content, content.ShowText) {
		layers = append(layers, OutlinedText(primary, cell, primaryAnchor)...)
	}
	if secondary, ok := cards.SecondaryText(card, content.TextSettings); ok &&
		cards.ShouldShowText(secondary.Content, content.ShowText) {
		layers = append(layers, OutlinedText(secondary, cell, secondaryAnchor)...)
	}
	return layers
}

type anchorFunc func(v cards.VAlign, cell Rect) (float64, Anchor)

// primaryAnchor places the primary text. Text height is not measured, so
// "center" is a tuned offset rather than a geometric centre.
func primaryAnchor(v cards.VAlign, cell Rect) (float64, Anchor) {
	switch v {
	case cards.VAlignTop:
		return cell.Y + primaryTop*cell.H, AnchorTop
	case cards.VAlignBottom:
		return cell.Y + cell.H - primaryBottom*cell.H, AnchorBottom
	default:
		return cell.Y + primaryCenter*cell.H, AnchorTop
	}
}

// secondaryAnchor sits below the primary positions so the two texts do not overlap.
func secondaryAnchor(v cards.VAlign, cell Rect) (float64, Anchor) {
	switch v {
	case cards.VAlignTop:
		return cell.Y + secondaryTop*cell.H, AnchorTop
	case cards.VAlignBottom:
		return cell.Y + cell.H - secondaryBottom*cell.H, AnchorBottom
	default:
		return cell.Y + secondaryCenter*cell.H, AnchorTop
	}
}

// outlineOffsets are the eight stroke copies: four cardinal, then four diagonal.
var outlineOffsets = [8][2]float64{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
}

// OutlinedText simulates a text stroke: eight copies shifted by the outline
// width in the outline colour, then the fill copy on top.
func OutlinedText(t cards.ResolvedText, cell Rect, anchor anchorFunc) []Layer {
	y, edge := anchor(t.VAlign, cell)
	pad := textPadding * cell.W
	base := Layer{
		Kind:     LayerText,
		Box:      Rect{X: cell.X + pad, Y: y, W: cell.W - 2*pad},
		Text:     t.Content,
		Font:     t.FontFamily,
		FontSize: t.FontSize,
		Align:    t.HAlign,
		Anchor:   edge,
		Opacity:  1,
	}

	layers := make([]Layer, 0, len(outlineOffsets)+1)
	for _, off := range outlineOffsets {
		l := base
		l.Box.X += off[0] * t.OutlineWidth
		l.Box.Y += off[1] * t.OutlineWidth
		l.Color = t.OutlineColor
		layers = append(layers, l)
	}
	fill := base
	fill.Color = t.Color
	return append(layers, fill)
}

func backPage(grid Grid, key, url string) Page {
	p := Page{Side: SideBack}
	for i := 0; i < grid.Size(); i++ {
		p.Layers = append(p.Layers, Layer{Kind: LayerImageCover, Box: grid.Cell(i), AssetKey: key, URL: url})
	}
	return p
}

func watermarkLayer(text string) Layer {
	return Layer{
		Kind:     LayerWatermark,
		Box:      Rect{X: PageMargin, Y: PageHeight - PageMargin/2 + watermarkFontSize/2, W: PageWidth - 2*PageMargin},
		Text:     text,
		FontSize: watermarkFontSize,
		Color:    "#000000",
		Align:    cards.AlignCenter,
		Anchor:   AnchorBottom,
		Opacity:  watermarkOpacity,
	}
}

func shareCodeLayer(png []byte) Layer {
	return Layer{
		Kind: LayerImageContain,
		Box: Rect{
			X: PageWidth - PageMargin - shareQRSize,
			Y: PageHeight - PageMargin + (PageMargin-shareQRSize)/2,
			W: shareQRSize,
			H: shareQRSize,
		},
		AssetKey: "share_qr",
		Data:     png,
	}
}

// ImageURLs returns the distinct URLs the document references, in first-use order.
func (d *Document) ImageURLs() []string {
	seen := map[string]bool{}
	var urls []string
	for _, p := range d.Pages {
		for _, l := range p.Layers {
			if l.URL == "" || seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			urls = append(urls, l.URL)
		}
	}
	return urls
}

// FrontPages counts front pages.
func (d *Document) FrontPages() int {
	n := 0
	for _, p := range d.Pages {
		if p.Side == SideFront {
			n++
		}
	}
	return n
}
