package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrTooSmall     = errors.New("image is smaller than the minimum size")
	ErrInvalidImage = errors.New("image cannot be decoded")
)

// ProcessedImage is an encoded square avatar.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Size        int
}

// Config for image processing
type Config struct {
	AvatarSize int // output edge in pixels (default 200)
	MinSource  int // smallest accepted source edge (default 64)
	Quality    int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		AvatarSize: 200,
		MinSource:  64,
		Quality:    85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Avatar center-crops data to a square of AvatarSize. PNG stays PNG,
// everything else is re-encoded as JPEG.
func (p *Processor) Avatar(data []byte) (*ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() < p.config.MinSource || b.Dy() < p.config.MinSource {
		return nil, ErrTooSmall
	}

	square := imaging.Fill(img, p.config.AvatarSize, p.config.AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		contentType = "image/png"
		err = png.Encode(&buf, square)
	} else {
		err = jpeg.Encode(&buf, square, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return &ProcessedImage{Data: buf.Bytes(), ContentType: contentType, Size: p.config.AvatarSize}, nil
}
