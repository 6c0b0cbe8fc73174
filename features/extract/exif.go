package extract

import (
	"strings"

	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/exifdec"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// exifCandidate picks the first non blank of UserComment, Make and ImageDescription.
func exifCandidate(tags exifdec.Tags) (dialect.Candidate, bool) {
	for _, tag := range []uint16{exifdec.TagUserComment, exifdec.TagMake, exifdec.TagImageDescription} {
		if text := tags.Text(tag); strings.TrimSpace(text) != "" {
			return commentCandidate(exifdec.TagName(tag), text), true
		}
	}
	return dialect.Candidate{}, false
}

// commentCandidate parses an EXIF comment, ignoring a "Prompt:" / "Workflow:" prefix.
func commentCandidate(sourceTag, text string) dialect.Candidate {
	parsed, _ := jsonrepair.Parse(dialect.StripPromptPrefix(strings.TrimSpace(text)))
	return dialect.Candidate{SourceTag: sourceTag, Text: text, Parsed: parsed}
}

// exif extracts from a TIFF region, as found in JPEG APP1 and PNG eXIf.
func (r *router) exif(tiff []byte) *dialect.Record {
	if tiff == nil {
		return nil
	}
	offset := exifdec.FindTIFFHeader(tiff)
	if offset < 0 {
		return nil
	}
	c, ok := exifCandidate(exifdec.DecodeAt(tiff, offset))
	if !ok {
		return nil
	}
	return dialect.Classify(c, r.patterns)
}

// webp prefers Make, where WebP writers put JSON, then falls back to UserComment.
func (r *router) webp(tiff []byte) *dialect.Record {
	if tiff == nil {
		return nil
	}
	offset := exifdec.FindTIFFHeader(tiff)
	if offset < 0 {
		return nil
	}
	tags := exifdec.DecodeAt(tiff, offset)
	if maker := tags.Text(exifdec.TagMake); strings.TrimSpace(maker) != "" {
		return dialect.Classify(commentCandidate(exifdec.TagName(exifdec.TagMake), maker), r.patterns)
	}
	comment := tags.Text(exifdec.TagUserComment)
	if strings.TrimSpace(comment) == "" {
		return nil
	}
	c := commentCandidate(exifdec.TagName(exifdec.TagUserComment), comment)
	if !jsonrepair.IsContainer(c.Parsed) {
		c.Parsed = nil
	}
	return dialect.Classify(c, r.patterns)
}
