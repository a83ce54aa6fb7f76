package imagepkg

import (
	"bytes"
	"image/png"
	"testing"
)

func TestGenerateQRPNG(t *testing.T) {
	b, err := GenerateQRPNG("https://example.com/download", 256)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Fatalf("expected 256px, got %d", img.Bounds().Dx())
	}
}

func TestGenerateQRPNGClampsSize(t *testing.T) {
	b, err := GenerateQRPNG("x", 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != minQRSize {
		t.Fatalf("expected %d, got %d", minQRSize, img.Bounds().Dx())
	}
}

func TestGenerateQRPNGEmpty(t *testing.T) {
	if _, err := GenerateQRPNG("", 256); err == nil {
		t.Fatal("expected error")
	}
}
