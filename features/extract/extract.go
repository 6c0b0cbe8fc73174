// Package extract turns image file bytes into a Result: it reads the container,
// picks the metadata candidates in precedence order and classifies them.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/exifdec"
	"github.com/sagan/aimeta/features/mediainfo"
	"github.com/sagan/aimeta/features/modelref"
)

type Options struct {
	// Collect Civitai model references (hashes, version ids) of the record.
	CivitaiLookup bool
	// Try the NovelAI alpha channel steganography reader when a PNG has no other metadata.
	AlphaFallback bool
	// Heuristic tables of the ComfyUI and generic extractors. nil for defaults.
	Patterns *dialect.Patterns
	// Max side of the thumbnail in px. 0 for none.
	Thumbnail int
	// Include a full EXIF tag dump.
	DumpExif bool
	FileName string
}

type Result struct {
	Info       ImageInfo                 `json:"info"`
	Record     *dialect.Record           `json:"record"`
	References []modelref.ModelReference `json:"references,omitempty"`
	Exif       []exifdec.Field           `json:"exif,omitempty"`
	// Warning is set when no metadata was found.
	Warning string `json:"warning,omitempty"`
}

// router holds the state of one extraction pass.
type router struct {
	ctx      context.Context
	data     []byte
	opts     Options
	patterns *dialect.Patterns
	// TIFF region of the EXIF data, if any
	tiff  []byte
	items []dialect.Item
}

// Extract reads the metadata of an image. It never fails: undecodable input
// yields a Result with a "no metadata" warning.
func Extract(ctx context.Context, data []byte, opts Options) *Result {
	r := &router{ctx: ctx, data: data, opts: opts, patterns: opts.Patterns}
	if r.patterns == nil {
		r.patterns = dialect.DefaultPatterns()
	}
	kind := container.Detect(data)
	var rec *dialect.Record
	switch kind {
	case container.KindPNG:
		rec = r.png()
	case container.KindJPEG:
		r.tiff = container.ReadJPEGExif(data)
		rec = r.exif(r.tiff)
	case container.KindWebP:
		r.tiff = container.ReadWebPExif(data)
		rec = r.webp(r.tiff)
	default:
		log.Debugf("%s: unsupported file type", opts.FileName)
	}
	if rec == nil {
		rec = dialect.NotFound()
	}

	res := &Result{Record: rec, Info: r.info(kind, rec)}
	if !rec.Found {
		res.Warning = constants.NO_METADATA_WARNING
	}
	if opts.CivitaiLookup && rec.Found {
		res.References = modelref.FromRecord(rec)
	}
	if opts.DumpExif && r.tiff != nil {
		fields, err := exifdec.Dump(r.tiff)
		if err != nil {
			log.Debugf("%s: exif dump: %v", opts.FileName, err)
		}
		res.Exif = fields
	}
	return res
}

// ExtractFile reads and extracts a file. "-" reads stdin.
func ExtractFile(ctx context.Context, filename string, opts Options) (*Result, error) {
	var data []byte
	var err error
	if filename == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filename)
		if opts.FileName == "" {
			opts.FileName = filepath.Base(filename)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filename, err)
	}
	return Extract(ctx, data, opts), nil
}

func (r *router) info(kind container.Kind, rec *dialect.Record) ImageInfo {
	info := ImageInfo{
		FileName:     r.opts.FileName,
		FileType:     kind.MimeType(),
		FileSize:     int64(len(r.data)),
		FileSizeText: FormatBytes(int64(len(r.data))),
		MetadataType: rec.Format,
		Items:        r.items,
	}
	if kind == container.KindUnknown {
		return info
	}
	if mi, err := mediainfo.Parse(r.data, r.opts.Thumbnail); err != nil {
		log.Debugf("%s: %v", r.opts.FileName, err)
	} else {
		info.Width, info.Height = mi.Width, mi.Height
		info.Signature, info.Thumbnail = mi.Signature, mi.Thumbnail
	}
	if r.tiff != nil {
		if camera, err := exifdec.CameraInfo(r.tiff); err == nil && !camera.IsEmpty() {
			info.Camera = camera
		}
	}
	return info
}

// Resolve looks up the model references of res against resolver, at most jobs at a time.
// It returns the number of resolved references.
func Resolve(ctx context.Context, res *Result, resolver modelref.Resolver, jobs int) int {
	if resolver == nil || len(res.References) == 0 {
		return 0
	}
	n := modelref.ResolveAll(ctx, res.References, resolver, jobs)
	log.Debugf("%s: resolved %d/%d model references", res.Info.FileName, n, len(res.References))
	return n
}
