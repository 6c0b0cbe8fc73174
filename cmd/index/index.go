package index

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/util/helper"
)

const (
	FORMAT_CSV  = "csv"
	FORMAT_XLSX = "xlsx"
)

var indexCmd = &cobra.Command{
	Use:   "index {dir}",
	Short: "Index the AI generation metadata of images in a directory",
	Long: `Index the AI generation metadata of images in a directory.

It extracts every .png / .jpg / .jpeg / .webp file in {dir} (recursively by default)
and outputs a csv (or xlsx) with one row per image. Default columns:
  path,name,dir_path,ext,size,mtime,mdate,mime,width,height,signature,format,source_tag,
  positive_prompt,negative_prompt,auxiliary_text,parameters,models,warning

The "thumbnail" column (data url) is only included if explicitly set in --includes,
use it with --thumbnail flag.

A single parameter or model item can be included as a column using "param.<label>" or
"model.<label>", the column name is "param_<label>" / "model_<label>" (spaces replaced by "_"). E.g. :
  aimeta index outputs -I "path,format,param.Steps,param.CFG scale,model.Model" -o index.csv

The output format is xlsx if --format is "xlsx" or the output file has .xlsx extension.`,
	Args: cobra.ExactArgs(1),
	RunE: doIndexCmd,
}

var (
	flagNoRecursive bool
	flagForce       bool
	flagJobs        int
	flagPrefix      string
	flagFormat      string
	flagOutput      string
	flagIncludes    []string
)

func doIndexCmd(command *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	format := flagFormat
	if format == "" {
		format = FORMAT_CSV
		if strings.EqualFold(filepath.Ext(flagOutput), "."+FORMAT_XLSX) {
			format = FORMAT_XLSX
		}
	}
	if format != FORMAT_CSV && format != FORMAT_XLSX {
		return fmt.Errorf("invalid format %q", format)
	}
	columns, err := Columns(flagIncludes, strings.TrimSuffix(flagPrefix, "_"))
	if err != nil {
		return err
	}
	opts, client, err := cmd.ExtractOptions(command)
	if err != nil {
		return err
	}
	inputDir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	rows, err := doIndex(command.Context(), inputDir, IndexOptions{
		NoRecursive: flagNoRecursive,
		Jobs:        flagJobs,
		Extract:     opts,
		Civitai:     client,
	})
	if err != nil {
		return err
	}
	log.Infof("indexed %d images", len(rows))

	header, records := rows.Table(columns)
	reader, writer := io.Pipe()
	go func() {
		var err error
		if format == FORMAT_XLSX {
			err = SaveXlsx(writer, header, records)
		} else {
			err = SaveCsv(writer, header, records)
		}
		writer.CloseWithError(err)
	}()
	return helper.WriteOutput(command.OutOrStdout(), flagOutput, reader)
}

func init() {
	indexCmd.Flags().BoolVarP(&flagNoRecursive, "no-recursive", "S", false, "Do not index subdirectories")
	indexCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Force overwriting without confirmation")
	indexCmd.Flags().IntVarP(&flagJobs, "jobs", "j", constants.DEFAULT_JOBS, "Number of files parsed concurrently")
	indexCmd.Flags().StringVarP(&flagPrefix, "prefix", "", "", `Output columns name prefix`)
	indexCmd.Flags().StringVarP(&flagFormat, "format", "f", "", `Output format: "csv" or "xlsx". `+
		`Default is decided by output file extension, "csv" if unknown`)
	indexCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	indexCmd.Flags().StringSliceVarP(&flagIncludes, "includes", "I", nil, `Includes columns, comma-separated. `+
		`"*" means all default columns`)
	cmd.AddExtractFlags(indexCmd)
	cmd.RootCmd.AddCommand(indexCmd)
}
