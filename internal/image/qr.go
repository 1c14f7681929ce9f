package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the side length in pixels when none is given.
const DefaultQRSize = 256

// MaxQRSize caps requested QR sizes.
const MaxQRSize = 2048

// ErrEmptyQRText is returned when there is nothing to encode.
var ErrEmptyQRText = errors.New("qr text is empty")

func qrSize(size int) int {
	if size <= 0 {
		return DefaultQRSize
	}
	return min(size, MaxQRSize)
}

// GenerateQRPNG returns PNG bytes of a QR code for text, size x size pixels.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQRText
	}
	b, err := qrcode.Encode(text, qrcode.Medium, qrSize(size))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return b, nil
}

// GenerateQRImage returns the QR code as an image for further composition.
func GenerateQRImage(text string, size int) (image.Image, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQRText
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return q.Image(qrSize(size)), nil
}
