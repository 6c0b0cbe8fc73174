package container

import (
	"bytes"
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/features/exifdec"
)

var exifHeader = []byte("Exif\x00\x00")

const markerAPP1 = 0xE1

// ReadJPEGExif returns the TIFF structure of the first APP1 "Exif" segment,
// starting at its byte order mark, or nil if there is none.
// Segments with an invalid length are stepped over 2 bytes at a time.
func ReadJPEGExif(data []byte) []byte {
	offset := 2
	for offset+4 < len(data) {
		if data[offset] != 0xFF {
			break
		}
		marker := data[offset+1]
		length := int(binary.BigEndian.Uint16(data[offset+2:]))
		if length < 2 || offset+2+length > len(data) {
			offset += 2
			continue
		}
		if marker == markerAPP1 {
			if offset+10 > len(data) {
				break
			}
			if bytes.Equal(data[offset+4:offset+10], exifHeader) && length > 8 {
				segment := data[offset+10 : offset+2+length]
				if tiffOffset := exifdec.FindTIFFHeader(segment); tiffOffset >= 0 {
					return segment[tiffOffset:]
				}
				log.Debugf("jpeg APP1 Exif segment at %d has no TIFF header", offset)
			}
		}
		offset += 2 + length
	}
	return nil
}
