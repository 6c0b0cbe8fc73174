package container

import (
	"encoding/binary"
	"hash/crc32"
)

// StripAncillaryChunks rebuilds a PNG file with only its critical chunks plus
// tRNS, recomputing every CRC. It lets the standard decoder read files whose
// metadata chunks are malformed.
func StripAncillaryChunks(data []byte) []byte {
	if len(data) < len(pngSignature) {
		return data
	}
	out := make([]byte, 0, len(data))
	out = append(out, pngSignature...)
	hasEnd := false
	for _, chunk := range ReadPNG(data).Chunks {
		if !isCritical(chunk.Type) && chunk.Type != "tRNS" {
			continue
		}
		out = appendChunk(out, chunk.Type, chunk.Data)
		if chunk.Type == "IEND" {
			hasEnd = true
			break
		}
	}
	if !hasEnd {
		out = appendChunk(out, "IEND", nil)
	}
	return out
}

func isCritical(chunkType string) bool {
	return len(chunkType) == 4 && chunkType[0] >= 'A' && chunkType[0] <= 'Z'
}

func appendChunk(out []byte, chunkType string, data []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	start := len(out)
	out = append(out, chunkType...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[start:]))
}
