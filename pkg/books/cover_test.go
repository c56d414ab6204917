package books

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg after compression, got %s", format)
	}
	return cfg.Width, cfg.Height
}

func TestCompressBoundsLargeImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	writeJPEG(t, path, 2000, 500)

	p := &CoverProcessor{Quality: 70, MaxDim: 100}
	if err := p.Compress(path); err != nil {
		t.Fatalf("compress: %v", err)
	}
	w, h := decodeDims(t, path)
	if w > 100 || h > 100 {
		t.Fatalf("expected bounded dimensions, got %dx%d", w, h)
	}
	if w != 100 {
		t.Fatalf("expected longest side scaled to the bound, got %dx%d", w, h)
	}
}

func TestCompressKeepsSmallImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	writeJPEG(t, path, 40, 30)

	if err := NewCoverProcessor().Compress(path); err != nil {
		t.Fatalf("compress: %v", err)
	}
	w, h := decodeDims(t, path)
	if w != 40 || h != 30 {
		t.Fatalf("expected dimensions preserved, got %dx%d", w, h)
	}
}

func TestCompressReencodesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	f.Close()

	if err := NewCoverProcessor().Compress(path); err != nil {
		t.Fatalf("compress: %v", err)
	}
	g, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer g.Close()
	if _, err := jpeg.Decode(g); err != nil {
		t.Fatalf("expected a jpeg after compression: %v", err)
	}
}

func TestCompressRejectsMissingFile(t *testing.T) {
	if err := NewCoverProcessor().Compress(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
