package imgutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
)

// StrippedExt returns the extension (with leading dot) a stripped copy of a file of ext is written as.
// There is no WebP encoder, so WebP (and any other non jpeg/png input) becomes png.
func StrippedExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".jfif":
		return strings.ToLower(ext)
	default:
		return ".png"
	}
}

// Reencode decodes image data, detects it's format (png / jpg (jpeg) / webp / gif / bmp, etc),
// and encodes the decoded pixels into ext format. Only pixels survive: all
// metadata (EXIF, text chunks) of input is dropped.
// ext : target image format extension, with or without leading dot.
// JPEG output uses quality constants.DEFAULT_JPEG_QUALITY.
func Reencode(data []byte, output io.Writer, ext string) error {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("%s: %w", ext, err)
	}
	img, err := container.DecodeImage(data, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	return imaging.Encode(output, img, format, imaging.JPEGQuality(constants.DEFAULT_JPEG_QUALITY))
}
