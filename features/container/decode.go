package container

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Upper bound of width * height of an image that is decoded into pixels.
const MaxPixels = 100_000_000

// ErrTooLarge is returned when the header declared dimensions exceed MaxPixels.
var ErrTooLarge = fmt.Errorf("image dimensions exceed %d pixels", MaxPixels)

// DecodeImage decodes data into pixels, but only after its header declares a size
// within MaxPixels. The decoder allocates the whole frame from the header up front,
// so a few hundred bytes would otherwise be enough to exhaust memory.
func DecodeImage(data []byte, opts ...imaging.DecodeOption) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}
	return imaging.Decode(bytes.NewReader(data), opts...)
}
