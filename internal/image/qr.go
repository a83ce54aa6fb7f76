package imagepkg

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	minQRSize = 128
	maxQRSize = 1024
)

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
// size is clamped to a sane range.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qr: empty content")
	}
	size = min(max(size, minQRSize), maxQRSize)
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	return pngBytes, nil
}
