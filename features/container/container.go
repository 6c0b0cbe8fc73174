// Package container walks the byte layout of PNG, JPEG and WebP files
// and hands out the embedded text and EXIF regions.
// All readers are tolerant: a truncated or malformed structure ends the scan, it never fails it.
package container

import (
	"bytes"

	"github.com/sagan/aimeta/constants"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindPNG
	KindJPEG
	KindWebP
)

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegSignature = []byte{0xFF, 0xD8}
	riffSignature = []byte("RIFF")
	webpSignature = []byte("WEBP")
)

// Detect sniffs the container kind from the leading magic bytes.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return KindPNG
	case bytes.HasPrefix(data, jpegSignature):
		return KindJPEG
	case len(data) >= 12 && bytes.HasPrefix(data, riffSignature) && bytes.Equal(data[8:12], webpSignature):
		return KindWebP
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindPNG:
		return "PNG"
	case KindJPEG:
		return "JPEG"
	case KindWebP:
		return "WebP"
	}
	return "Unknown"
}

func (k Kind) MimeType() string {
	switch k {
	case KindPNG:
		return constants.MIME_PNG
	case KindJPEG:
		return constants.MIME_JPEG
	case KindWebP:
		return constants.MIME_WEBP
	}
	return constants.MIME_BINARY
}

// Ext returns the canonical file extension, with leading dot.
func (k Kind) Ext() string {
	switch k {
	case KindPNG:
		return ".png"
	case KindJPEG:
		return ".jpg"
	case KindWebP:
		return ".webp"
	}
	return ""
}
