// Package mediainfo decodes an image for the image info block: dimensions,
// a pixel data signature and an optional thumbnail.
package mediainfo

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
)

type ImageInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Signature string `json:"signature,omitempty"` // sha256 of pixel data
	Thumbnail string `json:"thumbnail,omitempty"` // data url
}

// Parse decodes data. thumbnail is the max side of the thumbnail in px, 0 for none.
func Parse(data []byte, thumbnail int) (*ImageInfo, error) {
	if container.Detect(data) == container.KindPNG {
		// https://github.com/golang/go/issues/43382
		data = container.StripAncillaryChunks(data)
	}
	img, err := container.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	info := &ImageInfo{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Signature: PixelDataHashAlphaAware(img),
	}
	if thumbnail > 0 {
		if info.Thumbnail, err = Thumbnail(img, thumbnail); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// Thumbnail scales img to fit in size x size and returns it as a JPEG data url.
func Thumbnail(img image.Image, size int) (string, error) {
	thumb := imaging.Fit(img, size, size, imaging.Lanczos)
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(constants.DEFAULT_JPEG_QUALITY)); err != nil {
		return "", err
	}
	return dataurl.New(buf.Bytes(), constants.MIME_JPEG).String(), nil
}

// PixelDataHashAlphaAware returns a SHA-256 hash of the image's non-premultiplied
// RGBA pixels in scanline order. Fully transparent pixels are hashed as (0,0,0,0),
// so only visible differences change the hash.
func PixelDataHashAlphaAware(img image.Image) string {
	nrgba := imaging.Clone(img)
	w, hgt := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	h := sha256.New()
	row := make([]byte, w*4)
	for y := range hgt {
		copy(row, nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				row[i], row[i+1], row[i+2] = 0, 0, 0
			}
		}
		h.Write(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}
