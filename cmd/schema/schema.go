package schema

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/util/helper"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: `Print the json schema of "parse" command output`,
	Long: `Print the json schema of "parse" command output (a single result object).

Example:
  aimeta schema -o aimeta.schema.json
`,
	Args: cobra.NoArgs,
	RunE: doSchema,
}

var (
	flagForce  bool
	flagOutput string
)

// Schema returns the JSON Schema document of extract.Result.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := r.Reflect(&extract.Result{})
	s.Title = "aimeta parse result"
	return s
}

func doSchema(cmd *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	output, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return err
	}
	output = append(output, '\n')
	return helper.WriteOutput(cmd.OutOrStdout(), flagOutput, bytes.NewReader(output))
}

func init() {
	schemaCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Force overwriting without confirmation")
	schemaCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	cmd.RootCmd.AddCommand(schemaCmd)
}
