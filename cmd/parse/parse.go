package parse

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/features/render"
	"github.com/sagan/aimeta/util"
	"github.com/sagan/aimeta/util/helper"
)

var parseCmd = &cobra.Command{
	Use:     "parse {foo.png | -}...",
	Aliases: []string{"p"},
	Short:   "Extract AI generation metadata from image files",
	Long: `Extract AI generation metadata from image files (jpeg / png / webp).

Each {file} can be a glob pattern (e.g. "outputs/**/*.png"). If {file} is "-", read from stdin.
It outputs to stdout by default.

For a single file the output is one result object; for multiple files it's an array of results.
The result object has "info", "record", "references", "exif" and "warning" fields,
run "aimeta schema" to see the full schema.

Model hashes and Civitai version ids are resolved against the Civitai API if --civitai flag is set,
or civitai.enabled is true in config file, or $` + constants.ENV_CIVITAI + ` is "1" / "true".

Examples:
  aimeta parse foo.png
  aimeta parse "*.png" --format json -o meta.json
  aimeta parse foo.webp --civitai
  aimeta parse foo.png -t "{{.record.positive_prompt}}"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: doParse,
}

var (
	flagForce     bool
	flagCivitai   bool
	flagNoAlpha   bool
	flagExif      bool
	flagRaw       bool
	flagJobs      int
	flagThumbnail int
	flagFormat    string
	flagOutput    string
	flagTemplate  string
)

func doParse(command *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	switch flagFormat {
	case constants.FORMAT_JSON, constants.FORMAT_YAML, constants.FORMAT_TOML, constants.FORMAT_TEXT:
	default:
		return fmt.Errorf("invalid format %q", flagFormat)
	}
	var tpl *helper.Template
	if flagTemplate != "" {
		if tpl, err = helper.GetTemplate(flagTemplate, false); err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
	}
	filenames := helper.ParseFilenameArgs(args...)
	if len(filenames) == 0 {
		return fmt.Errorf("no matched files")
	}

	opts, client, err := cmd.ExtractOptions(command)
	if err != nil {
		return err
	}
	opts.DumpExif = flagExif

	ctx := command.Context()
	results := make([]*extract.Result, len(filenames))
	g := &errgroup.Group{}
	g.SetLimit(max(flagJobs, 1))
	for i, filename := range filenames {
		g.Go(func() error {
			res, err := extract.ExtractFile(ctx, filename, opts)
			if err != nil {
				return err
			}
			if client != nil {
				extract.Resolve(ctx, res, client, flagJobs)
			}
			results[i] = res
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	switch {
	case tpl != nil:
		for _, res := range results {
			output, err := tpl.Exec(util.FromJson(util.ToJson(res)))
			if err != nil {
				return err
			}
			fmt.Fprintln(buf, output)
		}
	case flagFormat == constants.FORMAT_TEXT:
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(buf)
			}
			render.Text(buf, res, render.Options{Raw: flagRaw})
		}
	default:
		var data any = results
		if len(results) == 1 {
			data = results[0]
		}
		contents, err := util.Marshal(flagFormat, data)
		if err != nil {
			return err
		}
		buf.Write(contents)
		if !bytes.HasSuffix(contents, []byte("\n")) {
			buf.WriteString("\n")
		}
	}
	return helper.WriteOutput(command.OutOrStdout(), flagOutput, buf)
}

func init() {
	parseCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Force overwriting without confirmation")
	parseCmd.Flags().BoolVarP(&flagExif, "exif", "", false, "Include a full EXIF tag dump in result")
	parseCmd.Flags().BoolVarP(&flagRaw, "raw", "", false, `Print raw metadata blocks in "text" format`)
	parseCmd.Flags().IntVarP(&flagJobs, "jobs", "j", constants.DEFAULT_JOBS, "Number of files parsed concurrently")
	parseCmd.Flags().StringVarP(&flagFormat, "format", "f", constants.FORMAT_TEXT, constants.HELP_FORMAT_FLAG)
	parseCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	parseCmd.Flags().StringVarP(&flagTemplate, "template", "t", "", `Template to format each result. `+
		`The result object is the template data. `+constants.HELP_TEMPLATE_FLAG)
	cmd.AddExtractFlags(parseCmd)
	cmd.RootCmd.AddCommand(parseCmd)
}
