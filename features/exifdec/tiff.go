// Package exifdec decodes the small subset of TIFF/EXIF tags that carry
// AI generation metadata (UserComment, ImageDescription, Make, ...).
package exifdec

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/util/stringutil"
)

const (
	TagImageDescription uint16 = 0x010E
	TagMake             uint16 = 0x010F
	TagModel            uint16 = 0x0110
	TagWorkflow         uint16 = 0x0270
	TagPrompt           uint16 = 0x0271
	TagExifIFDPointer   uint16 = 0x8769
	TagUserComment      uint16 = 0x9286
)

// TIFF field types
const (
	TypeASCII     uint16 = 2
	TypeUndefined uint16 = 7
)

var tagNames = map[uint16]string{
	TagUserComment:      "UserComment",
	TagImageDescription: "ImageDescription",
	TagMake:             "Make",
	TagPrompt:           "Prompt",
	TagWorkflow:         "Workflow",
}

// TagName returns the friendly name of a tag, or its decimal number.
func TagName(tag uint16) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return strconv.Itoa(int(tag))
}

// Entry is one decoded IFD entry. Text is set for ASCII and UNDEFINED types,
// Value holds the raw 4 byte value field for every other type.
type Entry struct {
	Type  uint16
	Text  string
	Value uint32
}

func (e Entry) IsText() bool {
	return e.Type == TypeASCII || e.Type == TypeUndefined
}

// Tags maps tag numbers to entries. Entries of the Exif sub-IFD overwrite the root IFD ones.
type Tags map[uint16]Entry

// Text returns the text of tag, or "" if it is absent or not textual.
func (t Tags) Text(tag uint16) string {
	if e, ok := t[tag]; ok && e.IsText() {
		return e.Text
	}
	return ""
}

// Named returns the textual tags keyed by TagName.
func (t Tags) Named() map[string]string {
	named := map[string]string{}
	for tag, e := range t {
		if e.IsText() {
			named[TagName(tag)] = e.Text
		}
	}
	return named
}

// FindTIFFHeader returns the index of the first "II" or "MM" byte order mark in b, or -1.
func FindTIFFHeader(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if (b[i] == 'I' && b[i+1] == 'I') || (b[i] == 'M' && b[i+1] == 'M') {
			return i
		}
	}
	return -1
}

// DecodeAt decodes the TIFF structure whose byte order mark is at offset of b.
func DecodeAt(b []byte, offset int) Tags {
	if offset < 0 || offset > len(b) {
		return Tags{}
	}
	return Decode(b[offset:])
}

// Decode reads the root IFD and, if present, the Exif sub-IFD of a TIFF structure.
// tiff must start with the byte order mark; all offsets are relative to it.
// Reading stops silently at the first out of range access, keeping the entries read so far.
func Decode(tiff []byte) Tags {
	tags := Tags{}
	if len(tiff) < 8 {
		return tags
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return tags
	}
	r := &reader{data: tiff, order: order}
	first, err := r.uint32(4)
	if err != nil {
		return tags
	}
	if err := r.readIFD(int(first), tags); err != nil {
		log.Debugf("exif: root IFD: %v", err)
	}
	if e, ok := tags[TagExifIFDPointer]; ok && !e.IsText() {
		if err := r.readIFD(int(e.Value), tags); err != nil {
			log.Debugf("exif: Exif IFD: %v", err)
		}
	}
	return tags
}

type reader struct {
	data  []byte
	order binary.ByteOrder
}

func (r *reader) bytes(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(r.data) || offset+n < offset {
		return nil, fmt.Errorf("read %d bytes at %d out of range (%d)", n, offset, len(r.data))
	}
	return r.data[offset : offset+n], nil
}

func (r *reader) uint16(offset int) (uint16, error) {
	b, err := r.bytes(offset, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *reader) uint32(offset int) (uint32, error) {
	b, err := r.bytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// readIFD reads the entries of the directory at dirStart into tags.
// Each entry is tag(2) type(2) count(4) value-or-offset(4).
func (r *reader) readIFD(dirStart int, tags Tags) error {
	count, err := r.uint16(dirStart)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		entryOffset := dirStart + 2 + i*12
		header, err := r.bytes(entryOffset, 12)
		if err != nil {
			return err
		}
		tag := r.order.Uint16(header[0:])
		typ := r.order.Uint16(header[2:])
		n := int(r.order.Uint32(header[4:]))
		entry := Entry{Type: typ, Value: r.order.Uint32(header[8:])}
		valueOffset := entryOffset + 8
		if n > 4 {
			valueOffset = int(entry.Value)
		}
		switch typ {
		case TypeASCII:
			if n > 0 {
				raw, err := r.bytes(valueOffset, n-1)
				if err != nil {
					return err
				}
				entry.Text = stringutil.BytesToString(raw)
			}
		case TypeUndefined:
			raw, err := r.bytes(valueOffset, n)
			if err != nil {
				return err
			}
			entry.Text = DecodeUserComment(raw)
		}
		tags[tag] = entry
	}
	return nil
}

// trimComment removes trailing NULs and a leading BOM.
func trimComment(s string) string {
	s = strings.TrimRight(s, "\x00")
	return strings.TrimPrefix(s, "\ufeff")
}
