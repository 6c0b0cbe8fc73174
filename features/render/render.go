// Package render prints an extraction result as human readable text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/features/modelref"
	"github.com/sagan/aimeta/util/stringutil"
)

type Options struct {
	// Print the raw metadata blocks.
	Raw bool
	// Max label column width. Longer labels are wrapped onto the value line.
	MaxLabelWidth int
}

const defaultMaxLabelWidth = 24

// Text writes res to w.
func Text(w io.Writer, res *extract.Result, opts Options) {
	if opts.MaxLabelWidth <= 0 {
		opts.MaxLabelWidth = defaultMaxLabelWidth
	}
	info := res.Info
	rec := res.Record

	name := info.FileName
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "File: %s (%s, %s", name, info.FileType, info.FileSizeText)
	if info.Width > 0 {
		fmt.Fprintf(w, ", %dx%d", info.Width, info.Height)
	}
	fmt.Fprintf(w, ")\n")
	if rec.SourceTag != "" {
		fmt.Fprintf(w, "Metadata: %s (%s)\n", info.MetadataType, rec.SourceTag)
	} else {
		fmt.Fprintf(w, "Metadata: %s\n", info.MetadataType)
	}
	items := info.Items
	if camera := info.Camera; camera != nil {
		items = appendNonEmpty(items, "Camera", camera.Model)
		items = appendNonEmpty(items, "Camera software", camera.Software)
		items = appendNonEmpty(items, "Artist", camera.Artist)
		if !camera.DateTime.IsZero() {
			items = append(items, dialect.Item{Label: "Date", Value: camera.DateTime.Format("2006-01-02 15:04:05")})
		}
	}
	printItems(w, items, opts.MaxLabelWidth)
	if res.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", res.Warning)
		return
	}

	printText(w, "Positive prompt", rec.Positive)
	printText(w, "Negative prompt", rec.Negative)
	printText(w, "Auxiliary", rec.Auxiliary)
	if len(rec.Params) > 0 {
		fmt.Fprintf(w, "\nParameters:\n")
		printItems(w, rec.Params, opts.MaxLabelWidth)
	}
	if len(rec.Models) > 0 {
		fmt.Fprintf(w, "\nModels:\n")
		printItems(w, rec.Models, opts.MaxLabelWidth)
	}
	if len(res.References) > 0 {
		fmt.Fprintf(w, "\nReferences:\n")
		printItems(w, References(res.References), opts.MaxLabelWidth)
	}
	if opts.Raw {
		for _, block := range rec.Raw {
			printText(w, block.Label, block.Text)
		}
	}
}

// References lists references as items, with the model page url of the resolved ones.
func References(refs []modelref.ModelReference) []dialect.Item {
	items := make([]dialect.Item, 0, len(refs))
	for i := range refs {
		ref := &refs[i]
		value := ref.Text()
		if ref.Resolved != nil {
			if ref.Kind == modelref.KindHash {
				value += " -> " + ref.Resolved.DisplayName()
			}
			value += " <" + ref.Resolved.URL + ">"
		}
		items = append(items, dialect.Item{Label: ref.Label, Value: value})
	}
	return items
}

func appendNonEmpty(items []dialect.Item, label, value string) []dialect.Item {
	if value == "" {
		return items
	}
	return append(items, dialect.Item{Label: label, Value: value})
}

func printText(w io.Writer, label, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", label)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// printItems prints "label : value" rows with the labels padded to a common display width.
func printItems(w io.Writer, items []dialect.Item, maxWidth int) {
	width := 0
	for _, item := range items {
		width = max(width, runewidth.StringWidth(item.Label))
	}
	width = min(width, maxWidth)
	indent := strings.Repeat(" ", width+5)
	for _, item := range items {
		fmt.Fprint(w, "  ")
		if remain := stringutil.PrintStringInWidth(w, item.Label, width, true); remain != "" {
			fmt.Fprintf(w, "%s\n  %s", remain, strings.Repeat(" ", width))
		}
		lines := strings.Split(item.Value, "\n")
		fmt.Fprintf(w, " : %s\n", lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "%s%s\n", indent, line)
		}
	}
}
