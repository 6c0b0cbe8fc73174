package extract

import (
	"math"
	"strconv"

	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/exifdec"
)

// ImageInfo is the file level info shown above the generation metadata.
type ImageInfo struct {
	FileName     string          `json:"file_name,omitempty"`
	FileType     string          `json:"file_type,omitempty"`
	FileSize     int64           `json:"file_size"`
	FileSizeText string          `json:"file_size_text"`
	Width        int             `json:"width,omitempty"`
	Height       int             `json:"height,omitempty"`
	Signature    string          `json:"signature,omitempty"`
	Thumbnail    string          `json:"thumbnail,omitempty"`
	MetadataType string          `json:"metadata_type"`
	Items        []dialect.Item  `json:"items,omitempty"`
	Camera       *exifdec.Camera `json:"camera,omitempty"`
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders a byte count with 1024 based units and at most 2 decimals,
// e.g. "0 Bytes", "1.5 KB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	v, i := float64(n), 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}
