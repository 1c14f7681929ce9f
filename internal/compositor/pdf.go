package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/fonts"
	imagepkg "github.com/youruser/therapydeck/internal/image"
)

// documentDate is stamped as creation and modification date so identical
// inputs give identical bytes.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// RenderPDF loads the images doc references and writes the PDF.
func RenderPDF(ctx context.Context, doc *Document, loader ImageLoader, reg *fonts.Registry, logger *slog.Logger) ([]byte, error) {
	images, err := Prefetch(ctx, doc, loader, logger)
	if err != nil {
		return nil, err
	}
	return WritePDF(doc, images, reg, logger)
}

// Compose lays out content and renders it to PDF.
func Compose(ctx context.Context, content *cards.Content, assets map[string]string, opts Options,
	loader ImageLoader, reg *fonts.Registry, logger *slog.Logger) ([]byte, error) {
	doc, err := Layout(content, assets, opts)
	if err != nil {
		return nil, err
	}
	return RenderPDF(ctx, doc, loader, reg, logger)
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	images Images
	fonts  *fonts.Registry
	logger *slog.Logger

	// tr converts UTF-8 to the cp1252 encoding of the core fallback font.
	tr         func(string) string
	registered map[string]*fpdf.ImageInfoType
	failed     map[string]bool
	addedFonts map[string]bool
	// widths holds the pixel widths of registered images. fpdf orders image
	// objects by width only, so no two images may share one.
	widths map[int]bool
}

type pdfDrawFunc func(w *pdfWriter, l Layer)

var pdfDrawers = map[LayerKind]pdfDrawFunc{
	LayerImageCover:   (*pdfWriter).drawCover,
	LayerImageContain: (*pdfWriter).drawContain,
	LayerText:         (*pdfWriter).drawText,
	LayerWatermark:    (*pdfWriter).drawText,
}

// WritePDF draws doc with already-loaded images. It performs no I/O.
func WritePDF(doc *Document, images Images, reg *fonts.Registry, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCellMargin(0)

	w := &pdfWriter{
		pdf:        pdf,
		images:     images,
		fonts:      reg,
		logger:     logger,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		registered: map[string]*fpdf.ImageInfoType{},
		failed:     map[string]bool{},
		addedFonts: map[string]bool{},
		widths:     map[int]bool{},
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, l := range page.Layers {
			draw, ok := pdfDrawers[l.Kind]
			if !ok {
				logger.Warn("unknown layer kind", "kind", l.Kind)
				continue
			}
			draw(w, l)
			if err := pdf.Error(); err != nil {
				return nil, fmt.Errorf("draw %s layer: %w", l.Kind, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// register adds image data under name once and returns its info, or nil
// when the data cannot be used.
func (w *pdfWriter) register(name string, data []byte, prepare func([]byte) ([]byte, string, error)) *fpdf.ImageInfoType {
	if info, ok := w.registered[name]; ok {
		return info
	}
	if w.failed[name] {
		return nil
	}
	out, typ, err := prepare(data)
	var width int
	if err == nil {
		out, typ, width, err = w.uniqueWidth(out, typ)
	}
	if err != nil {
		w.logger.Warn("image unusable, layer omitted", "image", name, "error", err)
		w.failed[name] = true
		return nil
	}
	info := w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(out))
	if err := w.pdf.Error(); err != nil {
		// A bad image must not poison the whole document.
		w.pdf.ClearError()
		w.logger.Warn("image rejected, layer omitted", "image", name, "error", err)
		w.failed[name] = true
		return nil
	}
	w.registered[name] = info
	w.widths[width] = true
	return info
}

// uniqueWidth stretches an image whose pixel width is already taken to the
// next free width and re-encodes it as PNG.
func (w *pdfWriter) uniqueWidth(data []byte, typ string) ([]byte, string, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, fmt.Errorf("decode image config: %w", err)
	}
	width := cfg.Width
	for w.widths[width] {
		width++
	}
	if width == cfg.Width {
		return data, typ, width, nil
	}
	img, err := imagepkg.Decode(data)
	if err != nil {
		return nil, "", 0, err
	}
	out, err := imagepkg.EncodePNG(imaging.Resize(img, width, cfg.Height, imaging.Lanczos))
	if err != nil {
		return nil, "", 0, err
	}
	w.logger.Debug("image widened", "from", cfg.Width, "to", width)
	return out, "PNG", width, nil
}

func (w *pdfWriter) drawCover(l Layer) {
	data := w.images.bytesFor(l)
	if data == nil {
		return
	}
	name := fmt.Sprintf("%s#cover:%.3f", imageName(l), l.Box.W/l.Box.H)
	info := w.register(name, data, func(b []byte) ([]byte, string, error) {
		img, err := imagepkg.Decode(b)
		if err != nil {
			return nil, "", err
		}
		out, err := imagepkg.EncodePNG(imagepkg.CoverCrop(img, l.Box.W, l.Box.H))
		return out, "PNG", err
	})
	if info == nil {
		return
	}
	w.pdf.ImageOptions(name, l.Box.X, l.Box.Y, l.Box.W, l.Box.H, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (w *pdfWriter) drawContain(l Layer) {
	data := w.images.bytesFor(l)
	if data == nil {
		return
	}
	name := imageName(l)
	info := w.register(name, data, passThrough)
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return
	}
	scale := min(l.Box.W/info.Width(), l.Box.H/info.Height())
	iw, ih := info.Width()*scale, info.Height()*scale
	x := l.Box.X + (l.Box.W-iw)/2
	y := l.Box.Y + (l.Box.H-ih)/2
	w.pdf.ImageOptions(name, x, y, iw, ih, false, fpdf.ImageOptions{}, 0, "")
}

// passThrough keeps PNG and JPEG bytes as they are and re-encodes anything
// else as PNG.
func passThrough(b []byte) ([]byte, string, error) {
	switch http.DetectContentType(b) {
	case "image/png":
		return b, "PNG", nil
	case "image/jpeg":
		return b, "JPG", nil
	}
	img, err := imagepkg.Decode(b)
	if err != nil {
		return nil, "", err
	}
	out, err := imagepkg.EncodePNG(img)
	return out, "PNG", err
}

func imageName(l Layer) string {
	if l.URL != "" {
		return l.URL
	}
	return l.AssetKey
}

func (w *pdfWriter) setFont(family string, size float64) (translate func(string) string) {
	fam := w.fonts.Resolve(family)
	if fam.Fallback {
		w.pdf.SetFont(fonts.FallbackPDFFamily, "B", size)
		return w.tr
	}
	if !w.addedFonts[fam.Name] {
		w.pdf.AddUTF8FontFromBytes(fam.Name, "", fam.TTF)
		w.addedFonts[fam.Name] = true
	}
	w.pdf.SetFont(fam.Name, "", size)
	return func(s string) string { return s }
}

func (w *pdfWriter) drawText(l Layer) {
	if l.Text == "" {
		return
	}
	translate := w.setFont(l.Font, l.FontSize)
	c := imagepkg.ParseHexColorOr(l.Color, white)
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	alpha := l.Opacity > 0 && l.Opacity < 1
	if alpha {
		w.pdf.SetAlpha(l.Opacity, "Normal")
	}

	text := translate(l.Text)
	lines := wrapText(text, l.Box.W, w.pdf.GetStringWidth)
	lineHeight := l.FontSize * lineSpacing
	top := blockTop(l.Box.Y, l.Anchor, len(lines), lineHeight)
	align := alignStr(l.Align) + "M"
	for i, line := range lines {
		w.pdf.SetXY(l.Box.X, top+float64(i)*lineHeight)
		w.pdf.CellFormat(l.Box.W, lineHeight, line, "", 0, align, false, 0, "")
	}

	if alpha {
		w.pdf.SetAlpha(1, "Normal")
	}
}

func alignStr(a cards.HAlign) string {
	switch a {
	case cards.AlignLeft:
		return "L"
	case cards.AlignRight:
		return "R"
	default:
		return "C"
	}
}
