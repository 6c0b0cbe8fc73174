package exifdec

import (
	"errors"
	"fmt"

	"github.com/dsoprea/go-exif/v3"
)

// Field is one tag of a full EXIF dump.
type Field struct {
	IFD   string `json:"ifd"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Dump lists every EXIF tag found anywhere in data (a whole image file or a bare TIFF block).
// It is used for the debug view only; prompt extraction goes through Decode.
// A file without EXIF returns (nil, nil).
func Dump(data []byte) (fields []Field, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exif dump: %v", r)
		}
	}()
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, nil
		}
		return nil, err
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		fields = append(fields, Field{IFD: entry.IfdPath, Name: entry.TagName, Value: entry.Formatted})
	}
	return fields, nil
}
