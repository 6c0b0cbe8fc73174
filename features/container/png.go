package container

import (
	"bytes"
	"context"
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/util/stringutil"
)

const (
	ChunkText  = "tEXt"
	ChunkZText = "zTXt"
	ChunkIText = "iTXt"
	ChunkExif  = "eXIf"
)

// Chunk is one PNG chunk. CRC is not verified.
type Chunk struct {
	Type string
	Data []byte
}

// PNGChunks holds the chunks of a PNG file in file order.
type PNGChunks struct {
	Chunks []Chunk
}

// TextEntry is one decoded tEXt / zTXt / iTXt chunk.
type TextEntry struct {
	ChunkType string
	Keyword   string
	Text      string
}

// ReadPNG splits a PNG file into chunks. The 8 byte signature is skipped without checking.
// Scanning stops at the first chunk whose declared length overruns the buffer.
func ReadPNG(data []byte) *PNGChunks {
	pc := &PNGChunks{}
	offset := 8
	for offset+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[offset:]))
		chunkType := string(data[offset+4 : offset+8])
		dataStart := offset + 8
		dataEnd := dataStart + length
		if length < 0 || dataEnd > len(data) || dataEnd < dataStart {
			log.Debugf("png chunk %q at %d overruns file (length %d), stop", chunkType, offset, length)
			break
		}
		pc.Chunks = append(pc.Chunks, Chunk{Type: chunkType, Data: data[dataStart:dataEnd]})
		offset = dataEnd + 4
	}
	return pc
}

// Get returns the payloads of all chunks of chunkType, in file order.
func (pc *PNGChunks) Get(chunkType string) [][]byte {
	var payloads [][]byte
	for _, chunk := range pc.Chunks {
		if chunk.Type == chunkType {
			payloads = append(payloads, chunk.Data)
		}
	}
	return payloads
}

// Exif returns the concatenated eXIf chunk payloads, or nil.
func (pc *PNGChunks) Exif() []byte {
	return bytes.Join(pc.Get(ChunkExif), nil)
}

// TextEntries decodes all textual chunks: every tEXt chunk first, then zTXt, then iTXt.
// Chunks without a keyword are skipped.
func (pc *PNGChunks) TextEntries(ctx context.Context) []TextEntry {
	var entries []TextEntry
	for _, data := range pc.Get(ChunkText) {
		keyword, text, ok := bytes.Cut(data, []byte{0})
		if !ok || len(keyword) == 0 {
			continue
		}
		entries = append(entries, TextEntry{ChunkText, stringutil.BytesToString(keyword), stringutil.BytesToString(text)})
	}
	for _, data := range pc.Get(ChunkZText) {
		if entry, ok := decodeZText(ctx, data); ok {
			entries = append(entries, entry)
		}
	}
	for _, data := range pc.Get(ChunkIText) {
		if entry, ok := decodeIText(ctx, data); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// zTXt: keyword NUL method zlib-stream.
func decodeZText(ctx context.Context, data []byte) (TextEntry, bool) {
	entry := TextEntry{ChunkType: ChunkZText}
	sep := bytes.IndexByte(data, 0)
	if sep <= 0 || len(data) < 3 {
		return entry, false
	}
	entry.Keyword = stringutil.BytesToString(data[:sep])
	if sep+2 > len(data) {
		return entry, false
	}
	stream := data[sep+2:]
	if len(stream) < 6 {
		return entry, false
	}
	inflated, err := Inflate(ctx, stream)
	// An undecodable stream still yields an entry under the chunk keyword, with the
	// compressed bytes (without the method byte) as text, so the keyword is never lost.
	if err != nil || len(inflated) == 0 {
		log.Debugf("zTXt %q: inflate failed (%v), using raw bytes", entry.Keyword, err)
		entry.Text = stringutil.BytesToString(stream)
		return entry, true
	}
	// Some writers put "keyword\0text" inside the compressed stream.
	if keyword, text, ok := bytes.Cut(inflated, []byte{0}); ok {
		entry.Keyword = stringutil.BytesToString(keyword)
		inflated = text
	}
	entry.Text = stringutil.BytesToString(inflated)
	return entry, entry.Keyword != ""
}

// iTXt: keyword NUL flag method language NUL translated-keyword NUL text.
func decodeIText(ctx context.Context, data []byte) (TextEntry, bool) {
	entry := TextEntry{ChunkType: ChunkIText}
	keyword, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(keyword) == 0 {
		return entry, false
	}
	entry.Keyword = stringutil.BytesToString(keyword)
	if len(rest) < 2 {
		entry.Text = stringutil.BytesToString(rest)
		return entry, true
	}
	compressed := rest[0] == 1
	rest = rest[2:]
	// language tag and translated keyword
	for range 2 {
		if _, after, found := bytes.Cut(rest, []byte{0}); found {
			rest = after
		}
	}
	if compressed {
		inflated, err := Inflate(ctx, rest)
		if err == nil {
			rest = inflated
		} else {
			log.Debugf("iTXt %q: inflate failed (%v), using raw bytes", entry.Keyword, err)
		}
	}
	entry.Text = stringutil.BytesToString(rest)
	return entry, true
}
