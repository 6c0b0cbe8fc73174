package index

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/util"
)

// IgnoreFilenames and IgnoreFilenameSuffixes are skipped during indexing.
// These are common temporary or system-generated files.
var IgnoreFilenames = []string{
	".DS_Store",   // macOS directory metadata
	"Thumbs.db",   // Windows thumbnail cache
	"desktop.ini", // Windows folder customization
}

var IgnoreFilenameSuffixes = []string{
	".partial",    // rclone transfer temporary file
	".crdownload", // Chrome partial download
	".part",       // Firefox partial download
	".tmp",        // Temporary file
}

var ImageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

// Prefixes of the per-label columns. "param.Steps" is the value of the "Steps" parameter item.
const (
	ParamPrefix = "param."
	ModelPrefix = "model."
)

// ImageRow is one index row.
type ImageRow struct {
	Path       string    `json:"path"`            // full relative path, "foo/bar/baz.png"
	Name       string    `json:"name"`            // filename, "baz.png"
	DirPath    string    `json:"dir_path"`        // parent dir relative path, "foo/bar", empty if file is in root path
	Ext        string    `json:"ext"`             // ".png"
	Size       int64     `json:"size"`            // file size
	Mtime      time.Time `json:"mtime"`           // modified time
	Mdate      string    `json:"mdate"`           // modified date, "2006-01-02"
	Mime       string    `json:"mime"`            // "image/png", empty if unknown
	Width      int       `json:"width"`           // image width
	Height     int       `json:"height"`          // image height
	Signature  string    `json:"signature"`       // sha256 of pixel data
	Format     string    `json:"format"`          // "A1111", "ComfyUI"...
	SourceTag  string    `json:"source_tag"`      // chunk keyword or EXIF tag the metadata came from
	Positive   string    `json:"positive_prompt"` // positive prompt
	Negative   string    `json:"negative_prompt"` // negative prompt
	Auxiliary  string    `json:"auxiliary_text"`  // wildcard / extra text
	Parameters string    `json:"parameters"`      // "Steps: 20, Sampler: Euler"
	Models     string    `json:"models"`          // "Model: sd15, Lora: detail"
	Warning    string    `json:"warning"`         // extraction warning or error
	Thumbnail  string    `json:"thumbnail"`       // thumbnail data url

	record *dialect.Record
}

type RowList []*ImageRow

type IndexOptions struct {
	NoRecursive bool
	Jobs        int
	Extract     extract.Options
	// Resolve model references if not nil. Resolved names are appended to the models column.
	Civitai *civitai.Client
}

func shouldIgnore(filename string) bool {
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if slices.Contains(IgnoreFilenames, filename) {
		return true
	}
	return slices.ContainsFunc(IgnoreFilenameSuffixes, func(suffix string) bool {
		return strings.HasSuffix(filename, suffix)
	})
}

// doIndex scans the directory and extracts every image file in it.
// Rows are sorted by path.
func doIndex(ctx context.Context, dir string, options IndexOptions) (rows RowList, err error) {
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (options.NoRecursive || shouldIgnore(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldIgnore(d.Name()) || !slices.Contains(ImageExts, strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows = make(RowList, len(paths))
	g := &errgroup.Group{}
	g.SetLimit(max(options.Jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			row, err := newRow(ctx, dir, path, options)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	return rows, nil
}

func newRow(ctx context.Context, dir, path string, options IndexOptions) (*ImageRow, error) {
	relPath, err := filepath.Rel(dir, path)
	if err != nil {
		return nil, err
	}
	relPath = filepath.ToSlash(relPath)
	parentDir := filepath.ToSlash(filepath.Dir(relPath))
	if parentDir == "." {
		parentDir = ""
	}
	row := &ImageRow{
		Path:    relPath,
		Name:    filepath.Base(path),
		DirPath: parentDir,
		Ext:     filepath.Ext(path),
	}
	res, err := extract.ExtractFile(ctx, path, options.Extract)
	if err != nil {
		log.Warnf("Could not extract %s: %v", path, err)
		row.Warning = err.Error()
		return row, nil
	}
	if options.Civitai != nil {
		extract.Resolve(ctx, res, options.Civitai, constants.DEFAULT_JOBS)
	}
	row.fill(res)
	if info, err := os.Stat(path); err == nil {
		row.Mtime = info.ModTime()
		row.Mdate = row.Mtime.UTC().Format(constants.DATE_FORMAT)
	}
	return row, nil
}

func (row *ImageRow) fill(res *extract.Result) {
	info, rec := res.Info, res.Record
	row.Size = info.FileSize
	row.Mime = info.FileType
	row.Width, row.Height = info.Width, info.Height
	row.Signature = info.Signature
	row.Thumbnail = info.Thumbnail
	row.Format = rec.Format
	row.SourceTag = rec.SourceTag
	row.Positive, row.Negative, row.Auxiliary = rec.Positive, rec.Negative, rec.Auxiliary
	row.Parameters = joinItems(rec.Params)
	models := slices.Clone(rec.Models)
	for _, ref := range res.References {
		if ref.Resolved != nil {
			models = append(models, dialect.Item{Label: ref.Label, Value: ref.Text() + " <" + ref.Resolved.URL + ">"})
		}
	}
	row.Models = joinItems(models)
	row.Warning = res.Warning
	row.record = rec
}

func joinItems(items []dialect.Item) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Label + ": " + item.Value
	}
	return strings.Join(parts, ", ")
}

// columnDef holds instructions on how to extract and name a column.
type columnDef struct {
	HeaderName string
	// item label of a "param." / "model." column
	Label     string
	IsParam   bool
	IsModel   bool
	StructIdx []int
}

// Columns resolves includes into column definitions. Valid includes are the json tags of ImageRow,
// "*" (all tags except thumbnail) and "param.<label>" / "model.<label>".
// If includes is nil, "*" is used. Columns keep the order of includes.
// If prefix is not empty, it's prepended to header names, e.g. "myprefix_path".
func Columns(includes []string, prefix string) (columns []columnDef, err error) {
	stdFields := map[string][]int{}
	var stdTags []string
	valType := reflect.TypeOf(ImageRow{})
	for i := 0; i < valType.NumField(); i++ {
		field := valType.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == "" || tag == "-" {
			continue
		}
		stdFields[tag] = field.Index
		stdTags = append(stdTags, tag)
	}
	if includes == nil {
		includes = []string{"*"}
	}
	header := func(name string) string {
		if prefix != "" {
			return prefix + "_" + name
		}
		return name
	}
	for _, include := range includes {
		switch {
		case include == "*":
			for _, tag := range stdTags {
				if tag != "thumbnail" {
					columns = append(columns, columnDef{HeaderName: header(tag), StructIdx: stdFields[tag]})
				}
			}
		case strings.HasPrefix(include, ParamPrefix) && len(include) > len(ParamPrefix):
			columns = append(columns, columnDef{HeaderName: header(sanitizeHeader(include)),
				Label: include[len(ParamPrefix):], IsParam: true})
		case strings.HasPrefix(include, ModelPrefix) && len(include) > len(ModelPrefix):
			columns = append(columns, columnDef{HeaderName: header(sanitizeHeader(include)),
				Label: include[len(ModelPrefix):], IsModel: true})
		default:
			idx, ok := stdFields[include]
			if !ok {
				return nil, fmt.Errorf("invalid include field %q", include)
			}
			columns = append(columns, columnDef{HeaderName: header(include), StructIdx: idx})
		}
	}
	if util.HasDuplicates(util.Map(columns, func(c columnDef) string { return c.HeaderName })) {
		return nil, fmt.Errorf("--includes flag has duplicate value(s)")
	}
	return columns, nil
}

// sanitizeHeader converts "param.CFG scale" to "param_CFG_scale".
func sanitizeHeader(path string) string {
	return strings.NewReplacer(".", "_", " ", "_").Replace(path)
}

// Table returns the header row and data rows of rl.
func (rl RowList) Table(columns []columnDef) (header []string, records [][]string) {
	header = make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.HeaderName
	}
	for _, row := range rl {
		if row == nil {
			continue
		}
		record := make([]string, len(columns))
		rVal := reflect.ValueOf(*row)
		for i, col := range columns {
			switch {
			case col.IsParam:
				if row.record != nil {
					record[i], _ = row.record.Param(col.Label)
				}
			case col.IsModel:
				if row.record != nil {
					record[i], _ = row.record.Model(col.Label)
				}
			default:
				record[i] = formatValue(rVal.FieldByIndex(col.StructIdx))
			}
		}
		records = append(records, record)
	}
	return header, records
}

// formatValue converts struct fields to string. time.Time is formatted as "YYYY-MM-DDTHH:mm:ssZ".
func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(constants.TIME_FORMAT)
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

// SaveCsv writes an RFC 4180 csv, the first row is header.
func SaveCsv(writer io.Writer, header []string, records [][]string) error {
	w := csv.NewWriter(writer)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return w.Error()
}

const xlsxSheet = "Sheet1"

// SaveXlsx writes an Excel workbook with a single sheet, the first row is header.
func SaveXlsx(writer io.Writer, header []string, records [][]string) (err error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, record := range append([][]string{header}, records...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(record))
		for j, value := range record {
			values[j] = value
		}
		if err = f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}
	if len(header) > 0 {
		if err = f.SetPanes(xlsxSheet, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(writer)
	return err
}
