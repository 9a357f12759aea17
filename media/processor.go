package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/disintegration/imaging"

	// register decoders for the formats upstream processors emit
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	ThumbnailFileExtension = ".jpg"
)

// StoredPreview describes a preview after it has been bounded and written.
type StoredPreview struct {
	RelativePath string
	Width        int
	Height       int
}

// Processor persists ingested previews. Previews arrive already generated by
// the upstream processing service; the processor's only transformation is
// enforcing the configured storage bound, re-encoding anything whose longest
// side exceeds it.
type Processor struct {
	store       Store
	maxSize     int
	jpegQuality int
}

func NewProcessor(store Store, maxSize, jpegQuality int) *Processor {
	return &Processor{store: store, maxSize: maxSize, jpegQuality: jpegQuality}
}

// StorePreview decodes the incoming preview, downscales it if it exceeds the
// storage bound, and saves it under a content-hash-derived filename. The
// returned dimensions are those of the bytes actually stored, which is what
// the catalog reports to browsers.
func (p *Processor) StorePreview(contentHash string, data io.Reader) (*StoredPreview, error) {
	img, format, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview payload: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid preview dimensions: %dx%d", width, height)
	}

	if format != "jpeg" {
		log.Printf("processor: Re-encoding %s preview for %s as jpeg", format, contentHash)
	}

	if width > p.maxSize || height > p.maxSize {
		if width >= height {
			img = imaging.Resize(img, p.maxSize, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, p.maxSize, imaging.Lanczos)
		}
		bounds = img.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
		log.Printf("processor: Bounded preview for %s to %dx%d", contentHash, width, height)
	}

	var payload bytes.Buffer
	if err := imaging.Encode(&payload, img, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode preview for %s: %w", contentHash, err)
	}

	targetFilename := contentHash + ThumbnailFileExtension
	savedRelPath, err := p.store.Save(AssetTypeThumbnail, targetFilename, &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to save preview via store: %w", err)
	}

	return &StoredPreview{
		RelativePath: savedRelPath,
		Width:        width,
		Height:       height,
	}, nil
}

// RemovePreview deletes a stored preview asset; used when an ingest turns out
// to be a duplicate or when an entry is deleted.
func (p *Processor) RemovePreview(relativePath string) error {
	return p.store.Delete(relativePath)
}
