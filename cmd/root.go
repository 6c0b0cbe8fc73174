package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/config"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/version"
)

var RootCmd = &cobra.Command{
	Use:   "aimeta",
	Short: "aimeta " + version.Version,
	Long: `aimeta ` + version.Version + "." + `
Extract AI image generation metadata (prompts, parameters, models) from JPEG / PNG / WebP files.

Supported generators: A1111 (Stable Diffusion WebUI), ComfyUI, InvokeAI, NovelAI, Midjourney, Civitai.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	flagLogLevel string
	flagConfig   string
)

func setup(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(level)
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	config.Set(c)
	return nil
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flagLogLevel, "log-level", "", constants.DEFAULT_LOG_LEVEL,
		"Log level: panic | fatal | error | warn | info | debug | trace")
	RootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "", "",
		`Config file (toml) path. Defaults to $`+constants.ENV_CONFIG+` or "<user config dir>/aimeta/config.toml"`)
}
