package container

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/sagan/aimeta/util/stringutil"
)

// ReadAlphaLSB reads text hidden in the least significant bit of each alpha value,
// in raster order, 8 bits per byte, most significant bit first.
// Collection starts at the first "{" and stops at a NUL or as soon as the collected
// bytes form valid JSON. ok is false unless the result looks like a JSON object.
func ReadAlphaLSB(data []byte) (text string, ok bool, err error) {
	img, err := DecodeImage(data)
	if err != nil {
		return "", false, fmt.Errorf("decode image: %w", err)
	}
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var collected []byte
	var current byte
	bits := 0
	started := false
scan:
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 3; x < len(row); x += 4 {
			current = current<<1 | row[x]&1
			bits++
			if bits < 8 {
				continue
			}
			c := current
			current, bits = 0, 0
			if c == 0 {
				if started {
					break scan
				}
				continue
			}
			if c == '{' {
				started = true
			}
			if !started {
				continue
			}
			collected = append(collected, c)
			if c == '}' && json.Valid(collected) {
				break scan
			}
		}
	}
	text = strings.TrimSpace(stringutil.BytesToString(collected))
	if strings.HasPrefix(text, "{") && strings.Contains(text, `"`) {
		return text, true, nil
	}
	return "", false, nil
}
