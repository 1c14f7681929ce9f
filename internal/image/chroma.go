package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// DefaultTolerance is the per-channel slack for the hard chroma-key test.
const DefaultTolerance = 50

// Feather thresholds. A pixel whose green channel exceeds the larger of red
// and blue by more than featherDominance, and whose green is above
// featherMinGreen, is made partially transparent.
const (
	featherDominance = 100
	featherMinGreen  = 200
)

// ChromaAlpha returns the alpha a pixel receives after keying. The second
// return value is false when the pixel is left untouched.
func ChromaAlpha(r, g, b uint8, tolerance int) (uint8, bool) {
	ri, gi, bi := int(r), int(g), int(b)
	if gi > 255-tolerance && ri < tolerance && bi < tolerance {
		return 0, true
	}
	dominance := gi - max(ri, bi)
	if dominance > featherDominance && gi > featherMinGreen {
		return uint8(max(0, 255-2*dominance)), true
	}
	return 0, false
}

// ExtractChromaKey makes the chroma-green parts of img transparent and
// softens green-dominant edge pixels. The result has the same bounds as img;
// colour channels are copied through unchanged.
func ExtractChromaKey(img image.Image, tolerance int) *image.NRGBA {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	out := imaging.Clone(img)
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if a, ok := ChromaAlpha(pix[i], pix[i+1], pix[i+2], tolerance); ok {
			pix[i+3] = a
		}
	}
	return out
}

// ChromaKeyPNG decodes data, keys out the green and returns PNG bytes.
func ChromaKeyPNG(data []byte, tolerance int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return EncodePNG(ExtractChromaKey(img, tolerance))
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
