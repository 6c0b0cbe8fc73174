package resolve

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/config"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/modelref"
	"github.com/sagan/aimeta/util"
	"github.com/sagan/aimeta/util/helper"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve {hash | civitai:<modelId>@<versionId>}...",
	Short: "Look up model hashes or Civitai model version ids",
	Long: `Look up model hashes or Civitai model version ids against the Civitai API.

An arg in "civitai:<modelId>@<versionId>" URN form is looked up by version id,
any other arg is looked up as a model file hash (AutoV1 / AutoV2 / SHA256 ...).
If --id flag is set, all args are treated as model version ids.

The lookup is always performed regardless of the civitai.enabled config;
the other [civitai] config options (api_base, api_key, timeout...) apply.

Examples:
  aimeta resolve 6ce0161689
  aimeta resolve --id 128713 --format json
  aimeta resolve "civitai:4384@128713"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: doResolve,
}

var (
	flagForce  bool
	flagID     bool
	flagFormat string
	flagOutput string
)

func doResolve(command *cobra.Command, args []string) (err error) {
	if err = helper.CheckOutput(flagOutput, flagForce); err != nil {
		return err
	}
	refs, err := parseRefs(args, flagID)
	if err != nil {
		return err
	}
	c := *config.Get()
	c.Civitai.Enabled = true
	client, err := c.NewCivitaiClient()
	if err != nil {
		return err
	}
	n := modelref.ResolveAll(command.Context(), refs, client, constants.DEFAULT_JOBS)

	buf := &bytes.Buffer{}
	if flagFormat == constants.FORMAT_TEXT {
		for _, ref := range refs {
			if ref.Resolved != nil {
				fmt.Fprintf(buf, "%s\t%s\t%s\n", ref.Identifier, ref.Resolved.DisplayName(), ref.Resolved.URL)
			} else {
				fmt.Fprintf(buf, "%s\t-\t-\n", ref.Identifier)
			}
		}
	} else {
		contents, err := util.Marshal(flagFormat, refs)
		if err != nil {
			return err
		}
		buf.Write(contents)
	}
	if err = helper.WriteOutput(command.OutOrStdout(), flagOutput, buf); err != nil {
		return err
	}
	if n < len(refs) {
		return fmt.Errorf("%d of %d not found", len(refs)-n, len(refs))
	}
	return nil
}

func parseRefs(args []string, versionIDs bool) (refs []modelref.ModelReference, err error) {
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if ids := modelref.ParseCivitaiURNs(arg); len(ids) > 0 {
			for _, id := range ids {
				refs = append(refs, modelref.ModelReference{Label: arg, Identifier: id, Kind: modelref.KindVersionID})
			}
			continue
		}
		if versionIDs {
			if util.ParseInt[int64](arg, 0) <= 0 {
				return nil, fmt.Errorf("invalid model version id %q", arg)
			}
			refs = append(refs, modelref.ModelReference{Label: arg, Identifier: arg, Kind: modelref.KindVersionID})
			continue
		}
		if arg == "" {
			return nil, fmt.Errorf("empty hash")
		}
		refs = append(refs, modelref.ModelReference{Label: arg, Identifier: arg, Kind: modelref.KindHash})
	}
	return refs, nil
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Force overwriting without confirmation")
	resolveCmd.Flags().BoolVarP(&flagID, "id", "", false, "Treat args as Civitai model version ids")
	resolveCmd.Flags().StringVarP(&flagFormat, "format", "f", constants.FORMAT_TEXT, constants.HELP_FORMAT_FLAG)
	resolveCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	cmd.RootCmd.AddCommand(resolveCmd)
}
