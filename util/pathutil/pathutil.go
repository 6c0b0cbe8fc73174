package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/sagan/aimeta/util/stringutil"
)

const FILENAME_MAX_LENGTH = 240

// Invalid filename characters in Windows (NTFS), and their full width alternatives.
// A subset of https://rclone.org/overview/#restricted-filenames-caveats .
var FilenameRestrictedCharacterReplacement = map[rune]rune{
	'*':  '＊',
	':':  '：',
	'<':  '＜',
	'>':  '＞',
	'|':  '｜',
	'?':  '？',
	'"':  '＂',
	'/':  '／',
	'\\': '＼',
}

// Replace invalid Windows filename chars to alternatives. E.g. '/' => '／', '?' => '？'
var FilenameRestrictedCharacterReplacer *strings.Replacer

func init() {
	args := []string{}
	for old, new := range FilenameRestrictedCharacterReplacement {
		args = append(args, string(old), string(new))
	}
	FilenameRestrictedCharacterReplacer = strings.NewReplacer(args...)
}

// Return a cleaned safe base filename (without path).
// 1. Replace invalid chars with alternatives (e.g. "?" => "？").
// 2. CleanTitle (clean \r, \n and other invisiable chars then TrimSpace).
// 3. Clean trailing dot (".") (Windows does NOT allow dot in the end of filename)
// 4. Truncate name to at most 240 (UTF-8 string) bytes.
func CleanBasename(name string) string {
	name = FilenameRestrictedCharacterReplacer.Replace(name)
	name = stringutil.CleanTitle(name)
	name = strings.TrimRight(name, ".")
	name = strings.TrimSpace(name)
	return stringutil.StringPrefixInBytes(name, FILENAME_MAX_LENGTH)
}

// SuffixedFilename returns "<dir>/<base><suffix><ext>" for filename "<dir>/<base><oldext>".
// ext includes the leading dot; empty ext keeps the original one.
// The new base is cleaned and truncated so the ext is preserved.
func SuffixedFilename(filename, suffix, ext string) string {
	dir, name := filepath.Split(filename)
	oldExt := filepath.Ext(name)
	if ext == "" {
		ext = oldExt
	}
	base := CleanBasename(strings.TrimSuffix(name, oldExt) + suffix)
	base = stringutil.StringPrefixInBytes(base, FILENAME_MAX_LENGTH-len(ext))
	return filepath.Join(dir, base+ext)
}
