package stringutil

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	unicodeEncoding "golang.org/x/text/encoding/unicode"
)

var (
	ErrSeemsInvalid = fmt.Errorf("input seems not a valid string of specified charset")
)

// Minimal chardet confidence [0-100] before a guessed legacy charset is trusted.
const CharsetDetectionThreshold = 60

// Key: IANA charset name (case sensitive) used by chardet.
var encodings = map[string]encoding.Encoding{
	"GB-18030":     simplifiedchinese.GB18030,
	"Big5":         traditionalchinese.Big5,
	"EUC-JP":       japanese.EUCJP, // GBK 字符串容易被误识别为 EUC-JP。
	"ISO-2022-JP":  japanese.ISO2022JP,
	"Shift_JIS":    japanese.ShiftJIS,
	"EUC-KR":       korean.EUCKR,
	"UTF-16BE":     unicodeEncoding.UTF16(unicodeEncoding.BigEndian, unicodeEncoding.IgnoreBOM),
	"UTF-16LE":     unicodeEncoding.UTF16(unicodeEncoding.LittleEndian, unicodeEncoding.IgnoreBOM),
	"ISO-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

func DecodeText(input []byte, charset string, force bool) ([]byte, error) {
	if charset == "UTF-8" {
		if !force && !utf8.Valid(input) {
			return input, ErrSeemsInvalid
		}
		return input, nil
	}
	if enc, ok := encodings[charset]; ok {
		output, err := enc.NewDecoder().Bytes(input)
		if !force && strings.ContainsRune(string(output), utf8.RuneError) {
			return output, ErrSeemsInvalid
		}
		return output, err
	}
	return nil, fmt.Errorf("unsupported charset %s", charset)
}

// DecodeUTF16 decodes UTF-16 text. bigEndian is the byte order used when there is no BOM.
func DecodeUTF16(input []byte, bigEndian bool) string {
	order := unicodeEncoding.LittleEndian
	if bigEndian {
		order = unicodeEncoding.BigEndian
	}
	output, err := unicodeEncoding.UTF16(order, unicodeEncoding.UseBOM).NewDecoder().Bytes(input)
	if err != nil {
		return ""
	}
	return string(output)
}

// DecodeLatin1 maps every byte to the code point of the same value.
func DecodeLatin1(input []byte) string {
	output, err := charmap.ISO8859_1.NewDecoder().Bytes(input)
	if err != nil {
		return string(input)
	}
	return string(output)
}

// BytesToString decodes metadata text bytes. Valid UTF-8 is used as is.
// Otherwise the charset is guessed; a confident guess of a supported charset is decoded,
// and anything else falls back to Latin-1 so no byte is lost.
func BytesToString(input []byte) string {
	if len(input) == 0 {
		return ""
	}
	if utf8.Valid(input) {
		return string(input)
	}
	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(input); err == nil && result.Confidence >= CharsetDetectionThreshold {
		if output, err := DecodeText(input, result.Charset, false); err == nil {
			log.Tracef("decoded %d bytes of text as %s (confidence %d)", len(input), result.Charset, result.Confidence)
			return string(output)
		}
	}
	return DecodeLatin1(input)
}
