package diff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/util"
	"github.com/sagan/aimeta/util/datautil"
	"github.com/sagan/aimeta/util/helper"
)

var diffCmd = &cobra.Command{
	Use:   "diff {left.png} {right.png}",
	Short: "Compare the generation metadata of two images",
	Long: `Compare the generation metadata of two images.

It extracts both images and prints the changed prompts, parameters and models, e.g. :
  ~ parameters.Seed: 1234 -> 5678
  + models.Lora = detail_tweaker
  - parameters.Hires upscale = 2

If a {file} is "-", read stdin.
`,
	Args: cobra.ExactArgs(2),
	RunE: doDiff,
}

var (
	flagForce  bool
	flagFormat string
	flagOutput string
)

func doDiff(command *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	if args[0] == "-" && args[1] == "-" {
		return fmt.Errorf("at most one of the files can be stdin")
	}
	opts, _, err := cmd.ExtractOptions(command)
	if err != nil {
		return err
	}
	opts.CivitaiLookup = false
	var views [2]any
	for i, filename := range args {
		res, err := extract.ExtractFile(command.Context(), filename, opts)
		if err != nil {
			return err
		}
		views[i] = View(res.Record)
	}
	diff := datautil.Diff(views[0], views[1])

	var output io.Reader
	if flagFormat == constants.FORMAT_TEXT {
		reader, writer := io.Pipe()
		go func() {
			err := diff.Print(writer)
			writer.CloseWithError(err)
		}()
		output = reader
	} else {
		contents, err := util.Marshal(flagFormat, diff)
		if err != nil {
			return err
		}
		output = bytes.NewReader(contents)
	}
	return helper.WriteOutput(command.OutOrStdout(), flagOutput, output)
}

// View returns the json decoded form of rec that is compared: prompts plus parameters and
// models keyed by label. A repeated label gets a " #2", " #3"... suffix.
func View(rec *dialect.Record) map[string]any {
	return map[string]any{
		"format":          rec.Format,
		"positive_prompt": rec.Positive,
		"negative_prompt": rec.Negative,
		"auxiliary_text":  rec.Auxiliary,
		"parameters":      itemsView(rec.Params),
		"models":          itemsView(rec.Models),
	}
}

func itemsView(items []dialect.Item) map[string]any {
	view := map[string]any{}
	seen := map[string]int{}
	for _, item := range items {
		seen[item.Label]++
		key := item.Label
		if n := seen[item.Label]; n > 1 {
			key = fmt.Sprintf("%s #%d", item.Label, n)
		}
		view[key] = item.Value
	}
	return view
}

func init() {
	diffCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Force overwriting without confirmation")
	diffCmd.Flags().StringVarP(&flagFormat, "format", "f", constants.FORMAT_TEXT, constants.HELP_FORMAT_FLAG)
	diffCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	cmd.AddExtractFlags(diffCmd)
	cmd.RootCmd.AddCommand(diffCmd)
}
