package parsemeta

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd/comfyui"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/features/jsonrepair"
	"github.com/sagan/aimeta/util"
	"github.com/sagan/aimeta/util/helper"
)

var parseMetaCmd = &cobra.Command{
	Use:   "parsemeta {filename | -}",
	Short: "Parse meta (workflow & prompt) info from ComfyUI generated .png image file",
	Long: `Parse meta (workflow & prompt) info from ComfyUI generated .png image file.

It extracts the raw 'workflow' and 'prompt' graphs embedded in the tEXt / zTXt / iTXt chunks of the PNG file.
Malformed JSON (e.g. NaN values written by some custom nodes) is repaired.
By default, it outputs the extracted whole metadata {workflow, prompt} as a JSON string to stdout.
Use --output flag to specify the output file.
Use --template flag to format the output. The template can access ".workflow" and ".prompt" fields.

If {filename} is "-", read from stdin.

Examples:
  aimeta comfyui parsemeta input.png
  aimeta comfyui parsemeta input.png -o output.json
  aimeta comfyui parsemeta input.png -t "{{.prompt.6.inputs.text}}"
  aimeta comfyui parsemeta input.png -t "{{toJSON .workflow}}"
`,
	Args: cobra.ExactArgs(1),
	RunE: doParseMeta,
}

var (
	flagForce    bool // override existing file
	flagTemplate string
	flagOutput   string
)

// ComfyUIPngMeta is the raw ComfyUI graphs of a png. Values are jsonrepair values.
type ComfyUIPngMeta struct {
	Prompt   any `json:"prompt,omitempty"`
	Workflow any `json:"workflow,omitempty"`
}

// ExtractComfyMetadata reads the "prompt" and "workflow" text chunks of a PNG file.
// The first parseable chunk of each keyword wins.
func ExtractComfyMetadata(ctx context.Context, data []byte) (*ComfyUIPngMeta, error) {
	if container.Detect(data) != container.KindPNG {
		return nil, fmt.Errorf("not a valid PNG file")
	}
	meta := &ComfyUIPngMeta{}
	for _, entry := range container.ReadPNG(data).TextEntries(ctx) {
		var target *any
		switch strings.ToLower(entry.Keyword) {
		case "prompt":
			target = &meta.Prompt
		case "workflow":
			target = &meta.Workflow
		default:
			continue
		}
		if *target != nil {
			continue
		}
		value, err := jsonrepair.Parse(entry.Text)
		if err != nil {
			log.Debugf("%s chunk %q: %v", entry.ChunkType, entry.Keyword, err)
			continue
		}
		*target = value
	}
	if meta.Prompt == nil && meta.Workflow == nil {
		return nil, fmt.Errorf("no ComfyUI prompt or workflow found")
	}
	return meta, nil
}

func init() {
	parseMetaCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Override existing file")
	parseMetaCmd.Flags().StringVarP(&flagTemplate, "template", "t", "", `Template to format the output. `+
		constants.HELP_TEMPLATE_FLAG)
	parseMetaCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	comfyui.ComfyuiCmd.AddCommand(parseMetaCmd)
}

func doParseMeta(cmd *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	argFilename := args[0]
	var data []byte
	if argFilename == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(argFilename)
	}
	if err != nil {
		return err
	}
	meta, err := ExtractComfyMetadata(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("error reading metadata: %w", err)
	}

	var output string
	if flagTemplate != "" {
		tmpl, err := helper.GetTemplate(flagTemplate, true)
		if err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		output, err = tmpl.Exec(util.FromJson(util.ToJson(meta)))
		if err != nil {
			return fmt.Errorf("template execute error: %w", err)
		}
	} else {
		output = util.ToJson(meta)
	}
	return helper.WriteOutput(cmd.OutOrStdout(), flagOutput, strings.NewReader(output+"\n"))
}
