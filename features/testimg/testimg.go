// Package testimg builds small in-memory image files carrying metadata, for tests.
package testimg

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

// Chunk is a raw PNG chunk.
type Chunk struct {
	Type string
	Data []byte
}

func Text(keyword, text string) Chunk {
	return Chunk{"tEXt", []byte(keyword + "\x00" + text)}
}

func ZText(keyword, text string) Chunk {
	return Chunk{"zTXt", append([]byte(keyword+"\x00\x00"), deflate([]byte(text))...)}
}

// IText builds an iTXt chunk with empty language tag and translated keyword.
func IText(keyword, text string, compressed bool) Chunk {
	data := []byte(keyword + "\x00")
	if compressed {
		data = append(data, 1, 0, 0, 0)
		return Chunk{"iTXt", append(data, deflate([]byte(text))...)}
	}
	data = append(data, 0, 0, 0, 0)
	return Chunk{"iTXt", append(data, text...)}
}

func Exif(tiff []byte) Chunk {
	return Chunk{"eXIf", tiff}
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// Image returns an opaque w x h gradient.
func Image(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), 128, 255})
		}
	}
	return img
}

// PNG encodes img and inserts chunks right before IEND.
func PNG(img image.Image, chunks ...Chunk) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	data := buf.Bytes()
	iend := len(data) - 12
	out := append([]byte{}, data[:iend]...)
	for _, c := range chunks {
		out = AppendChunk(out, c.Type, c.Data)
	}
	return append(out, data[iend:]...)
}

func AppendChunk(out []byte, chunkType string, data []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	start := len(out)
	out = append(out, chunkType...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[start:]))
}

// AlphaPNG hides text in the alpha LSBs of an w x h image, MSB first in raster order.
func AlphaPNG(w, h int, text string) []byte {
	img := Image(w, h)
	bit := 0
	payload := []byte(text)
	for i := 3; i < len(img.Pix); i += 4 {
		var b byte
		if bit/8 < len(payload) {
			b = payload[bit/8] >> (7 - bit%8) & 1
		}
		img.Pix[i] = 254 | b
		bit++
	}
	return PNG(img)
}

// JPEG encodes a 8x8 image with an APP1 Exif segment holding tiff.
func JPEG(tiff []byte) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Image(8, 8), nil); err != nil {
		panic(err)
	}
	data := buf.Bytes()
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	segment = append(segment, payload...)
	out := append([]byte{}, data[:2]...)
	out = append(out, segment...)
	return append(out, data[2:]...)
}

// WebP wraps tiff into the EXIF chunk of a RIFF WEBP container. There is no image data.
func WebP(tiff []byte) []byte {
	body := []byte("WEBP")
	body = append(body, "EXIF"...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(tiff)))
	body = append(body, tiff...)
	if len(tiff)%2 == 1 {
		body = append(body, 0)
	}
	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

// Tag is one IFD entry. Text is stored as ASCII, Raw as UNDEFINED.
type Tag struct {
	ID   uint16
	Text string
	Raw  []byte
}

// UserComment prefixes text with the "UNICODE\0" charset id and encodes it as UTF-16LE.
func UserComment(text string) []byte {
	raw := []byte("UNICODE\x00")
	for _, r := range text {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(r))
	}
	return raw
}

// TIFF builds a little endian TIFF structure. root tags go in IFD0; exif tags,
// if any, go in an Exif sub-IFD linked by tag 0x8769.
func TIFF(root []Tag, exif []Tag) []byte {
	if len(exif) > 0 {
		root = append(root, Tag{ID: 0x8769})
	}
	le := binary.LittleEndian
	out := []byte{'I', 'I', 42, 0, 8, 0, 0, 0}
	var patchExif int
	writeIFD := func(tags []Tag) {
		dirStart := len(out)
		size := 2 + 12*len(tags) + 4
		heap := dirStart + size
		var values []byte
		out = le.AppendUint16(out, uint16(len(tags)))
		for _, t := range tags {
			out = le.AppendUint16(out, t.ID)
			var value []byte
			typ := uint16(7)
			switch {
			case t.ID == 0x8769:
				out = le.AppendUint16(out, 4)
				out = le.AppendUint32(out, 1)
				patchExif = len(out)
				out = le.AppendUint32(out, 0)
				continue
			case t.Raw != nil:
				value = t.Raw
			default:
				typ = 2
				value = append([]byte(t.Text), 0)
			}
			out = le.AppendUint16(out, typ)
			out = le.AppendUint32(out, uint32(len(value)))
			if len(value) <= 4 {
				out = append(out, make([]byte, 4)...)
				copy(out[len(out)-4:], value)
				continue
			}
			out = le.AppendUint32(out, uint32(heap+len(values)))
			values = append(values, value...)
		}
		out = le.AppendUint32(out, 0)
		out = append(out, values...)
	}
	writeIFD(root)
	if len(exif) > 0 {
		le.PutUint32(out[patchExif:], uint32(len(out)))
		writeIFD(exif)
	}
	return out
}

// HeaderPNG returns a PNG that holds only an IHDR declaring w x h (8-bit RGBA) and IEND.
func HeaderPNG(w, h uint32) []byte {
	out := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	ihdr := binary.BigEndian.AppendUint32(nil, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 6, 0, 0, 0)
	out = AppendChunk(out, "IHDR", ihdr)
	return AppendChunk(out, "IEND", nil)
}
