package imagepkg

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ChromaGreen is the solid key colour used for padding and generated backgrounds.
var ChromaGreen = color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}

// FitResult describes how a source is placed inside a target canvas.
type FitResult struct {
	Scale   float64
	Width   int // inner (scaled) width
	Height  int // inner (scaled) height
	OffsetX int
	OffsetY int
}

// Padded reports whether the scaled image leaves part of the canvas uncovered.
func (f FitResult) Padded(canvasW, canvasH int) bool {
	return f.Width != canvasW || f.Height != canvasH
}

// ComputeFit returns the contain-fit of a srcW x srcH image into a dstW x dstH
// canvas. The inner size never exceeds the canvas.
func ComputeFit(srcW, srcH, dstW, dstH int) FitResult {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return FitResult{}
	}
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	w := clamp(int(math.Round(float64(srcW)*scale)), 1, dstW)
	h := clamp(int(math.Round(float64(srcH)*scale)), 1, dstH)
	return FitResult{
		Scale:   scale,
		Width:   w,
		Height:  h,
		OffsetX: (dstW - w) / 2,
		OffsetY: (dstH - h) / 2,
	}
}

// FitToCanvas scales img to fit inside a width x height canvas without
// cropping. Any uncovered area is filled with ChromaGreen so a later
// ExtractChromaKey pass turns it transparent.
func FitToCanvas(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	fit := ComputeFit(b.Dx(), b.Dy(), width, height)
	if fit.Width == 0 {
		return imaging.New(width, height, ChromaGreen)
	}

	var scaled *image.NRGBA
	if fit.Width == b.Dx() && fit.Height == b.Dy() {
		scaled = imaging.Clone(img)
	} else {
		scaled = imaging.Resize(img, fit.Width, fit.Height, imaging.Lanczos)
	}
	if !fit.Padded(width, height) {
		return scaled
	}

	canvas := imaging.New(width, height, ChromaGreen)
	return imaging.Paste(canvas, scaled, image.Pt(fit.OffsetX, fit.OffsetY))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
