package imagepkg

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestExtractChromaKeyPureGreen(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {7, 3}, {64, 64}} {
		out := ExtractChromaKey(solid(size.X, size.Y, ChromaGreen), DefaultTolerance)
		require.Equal(t, size, out.Bounds().Size())
		for i := 3; i < len(out.Pix); i += 4 {
			if out.Pix[i] != 0 {
				t.Fatalf("size %v: alpha at %d = %d, want 0", size, i/4, out.Pix[i])
			}
		}
	}
}

func TestExtractChromaKeyLeavesOtherColours(t *testing.T) {
	for _, c := range []color.NRGBA{
		{R: 200, G: 30, B: 40, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
		{R: 120, G: 180, B: 90, A: 255},
	} {
		out := ExtractChromaKey(solid(5, 5, c), DefaultTolerance)
		for i := 0; i < len(out.Pix); i += 4 {
			got := color.NRGBA{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2], A: out.Pix[i+3]}
			if got != c {
				t.Fatalf("pixel %d = %v, want %v", i/4, got, c)
			}
		}
	}
}

func TestChromaAlphaFeatherMonotonic(t *testing.T) {
	prev := -1
	for b := 0; b <= 50; b++ {
		a, _ := ChromaAlpha(0, 220, uint8(b), DefaultTolerance)
		if int(a) < prev {
			t.Fatalf("alpha decreased at b=%d: %d < %d", b, a, prev)
		}
		prev = int(a)
	}
	// Fall further along the dominance axis until the feather stops applying.
	for b := 51; b <= 220; b++ {
		a, keyed := ChromaAlpha(0, 220, uint8(b), DefaultTolerance)
		if int(a) < prev && keyed {
			t.Fatalf("alpha decreased at b=%d: %d < %d", b, a, prev)
		}
		if 220-b <= featherDominance {
			assert.False(t, keyed, "b=%d should not be keyed", b)
			out := ExtractChromaKey(solid(1, 1, color.NRGBA{G: 220, B: uint8(b), A: 255}), DefaultTolerance)
			assert.Equal(t, uint8(255), out.Pix[3], "b=%d", b)
		} else {
			prev = int(a)
		}
	}
}

func TestChromaAlphaCases(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
		keyed   bool
	}{
		{"pure key", 0, 255, 0, 0, true},
		{"near key", 40, 210, 30, 0, true},
		{"feather", 90, 230, 60, 0, true},
		{"soft feather", 100, 210, 105, 45, true},
		{"dominance at threshold", 110, 210, 0, 0, false},
		{"dark green", 0, 150, 0, 0, false},
		{"white", 255, 255, 255, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keyed := ChromaAlpha(tt.r, tt.g, tt.b, DefaultTolerance)
			assert.Equal(t, tt.keyed, keyed)
			if keyed {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractChromaKeyKeepsUnkeyedAlpha(t *testing.T) {
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 128}
	out := ExtractChromaKey(solid(2, 2, c), 0)
	assert.Equal(t, uint8(128), out.Pix[3])
}

func TestChromaKeyPNG(t *testing.T) {
	img := solid(4, 2, ChromaGreen)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	data, err := EncodePNG(img)
	require.NoError(t, err)

	out, err := ChromaKeyPNG(data, DefaultTolerance)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	nrgba := imaging.Clone(decoded)
	assert.Equal(t, uint8(255), nrgba.Pix[3])
	assert.Equal(t, uint8(0), nrgba.Pix[7])

	_, err = ChromaKeyPNG([]byte("not an image"), DefaultTolerance)
	assert.Error(t, err)
}
