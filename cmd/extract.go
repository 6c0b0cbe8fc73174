package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/config"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/extract"
)

// ExtractOptions returns the extraction options of the loaded config and the common
// --civitai / --no-alpha / --thumbnail flags of cmd, plus a Civitai client if lookups are enabled.
func ExtractOptions(cmd *cobra.Command) (opts extract.Options, client *civitai.Client, err error) {
	cfg := config.Get()
	if enabled, _ := cmd.Flags().GetBool("civitai"); enabled && !cfg.Civitai.Enabled {
		c := *cfg
		c.Civitai.Enabled = true
		cfg = &c
	}
	if opts, err = cfg.ExtractOptions(); err != nil {
		return opts, nil, err
	}
	if noAlpha, _ := cmd.Flags().GetBool("no-alpha"); noAlpha {
		opts.AlphaFallback = false
	}
	if cmd.Flags().Changed("thumbnail") {
		opts.Thumbnail, _ = cmd.Flags().GetInt("thumbnail")
	}
	if client, err = cfg.NewCivitaiClient(); err != nil {
		return opts, nil, err
	}
	if client != nil {
		log.Debugf("civitai lookups enabled, api=%s", cfg.Civitai.ApiBase)
	}
	return opts, client, nil
}

// AddExtractFlags registers the flags ExtractOptions reads.
func AddExtractFlags(command *cobra.Command) {
	command.Flags().Bool("civitai", false, "Resolve model hashes / version ids against the Civitai API")
	command.Flags().Bool("no-alpha", false, "Do not try the NovelAI alpha channel when a png has no other metadata")
	command.Flags().Int("thumbnail", constants.DEFAULT_THUMBNAIL_SIZE,
		"Include a thumbnail data url of this max side (px) in result. 0 to disable")
}
