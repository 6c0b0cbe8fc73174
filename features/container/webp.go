package container

import (
	"bytes"
	"encoding/binary"

	"github.com/sagan/aimeta/features/exifdec"
)

// ReadWebPExif returns the TIFF structure inside the EXIF chunk of a WebP (RIFF) file, or nil.
// No "Exif\0\0" prefix is required; the byte order mark is searched for.
func ReadWebPExif(data []byte) []byte {
	if !bytes.HasPrefix(data, riffSignature) {
		return nil
	}
	offset := 12
	for offset+8 < len(data) {
		fourCC := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4:]))
		start := offset + 8
		if fourCC == "EXIF" {
			end := min(start+size, len(data))
			payload := data[start:end]
			if tiffOffset := exifdec.FindTIFFHeader(payload); tiffOffset >= 0 {
				return payload[tiffOffset:]
			}
			return nil
		}
		offset = start + size + size%2
	}
	return nil
}
