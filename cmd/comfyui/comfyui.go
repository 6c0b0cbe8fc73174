package comfyui

import (
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
)

var ComfyuiCmd = &cobra.Command{
	Use:     "comfyui",
	Aliases: []string{"comfy", "cu"},
	Short:   "ComfyUI related actions",
	Long:    `ComfyUI related actions.`,
}

func init() {
	cmd.RootCmd.AddCommand(ComfyuiCmd)
}
