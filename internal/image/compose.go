package imagepkg

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CoverCrop crops img around its centre to the aspect ratio w:h without
// resampling, so the result can be stretched into a w x h box with no
// distortion (CSS object-fit: cover).
func CoverCrop(img image.Image, w, h float64) *image.NRGBA {
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return imaging.Clone(img)
	}
	target := w / h
	src := float64(b.Dx()) / float64(b.Dy())
	cw, ch := b.Dx(), b.Dy()
	if src > target {
		cw = int(math.Round(float64(b.Dy()) * target))
	} else if src < target {
		ch = int(math.Round(float64(b.Dx()) / target))
	}
	cw = clamp(cw, 1, b.Dx())
	ch = clamp(ch, 1, b.Dy())
	if cw == b.Dx() && ch == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.CropCenter(img, cw, ch)
}

// Cover scales and crops img to exactly w x h pixels.
func Cover(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// Contain scales img to fit inside w x h, keeping its aspect ratio.
func Contain(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	fit := ComputeFit(b.Dx(), b.Dy(), w, h)
	if fit.Width == 0 {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, fit.Width, fit.Height, imaging.Lanczos)
}
