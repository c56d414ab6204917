package books

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

// CoverProcessor re-encodes cover photos before upload: decode, bound the
// dimensions, and write back a lossy JPEG at fixed quality so uploads stay
// small regardless of what the camera produced.
type CoverProcessor struct {
	// Quality is the JPEG quality used for re-encoding.
	Quality int
	// MaxDim bounds the longest image side in pixels.
	MaxDim uint
}

// NewCoverProcessor returns a processor with the default quality and size.
func NewCoverProcessor() *CoverProcessor {
	return &CoverProcessor{Quality: 70, MaxDim: 1280}
}

// Compress rewrites the image file at path in place.
func (p *CoverProcessor) Compress(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	img, _, err := image.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) > p.MaxDim || uint(bounds.Dy()) > p.MaxDim {
		img = resize.Thumbnail(p.MaxDim, p.MaxDim, img, resize.Lanczos3)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewrite image: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
